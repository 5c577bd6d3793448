package translation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"horse.fit/mtroute/internal/language"
)

var propertyLanguages = []language.Code{language.Greek, language.English, language.Chinese, "de", "fr"}

// maskRouteSet turns the bits of mask into a route table over propertyLanguages.
type maskRouteSet map[BackendID]bool

func newMaskRouteSet(mask uint32) maskRouteSet {
	routes := maskRouteSet{}
	bit := 0
	for _, source := range propertyLanguages {
		for _, target := range propertyLanguages {
			if source == target {
				continue
			}
			if mask&(1<<bit) != 0 {
				routes[BackendID{Source: source, Target: target}] = true
			}
			bit++
		}
	}
	return routes
}

func (m maskRouteSet) Has(id BackendID) bool {
	return m[id]
}

func languageGen() gopter.Gen {
	values := make([]interface{}, 0, len(propertyLanguages))
	for _, code := range propertyLanguages {
		values = append(values, code)
	}
	return gen.OneConstOf(values...)
}

func TestProperty_ResolvePrecedence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("first matching rule wins", prop.ForAll(
		func(mask uint32, source, target language.Code) bool {
			routes := newMaskRouteSet(mask)
			got := Resolve(source, target, routes)

			direct := BackendID{Source: source, Target: target}
			first := BackendID{Source: source, Target: language.Hub}
			second := BackendID{Source: language.Hub, Target: target}

			switch {
			case source == target:
				return got == RouteDecision(NoOp{})
			case routes.Has(direct):
				return got == RouteDecision(Direct{Hop: direct})
			case routes.Has(first) && routes.Has(second):
				return got == RouteDecision(Pivot{First: first, Second: second})
			default:
				return got == RouteDecision(Unsupported{Source: source, Target: target})
			}
		},
		gen.UInt32(),
		languageGen(),
		languageGen(),
	))

	properties.Property("hops are known and chain source to target", prop.ForAll(
		func(mask uint32, source, target language.Code) bool {
			routes := newMaskRouteSet(mask)
			hops := Resolve(source, target, routes).Hops()
			if len(hops) == 0 {
				return true
			}
			if hops[0].Source != source || hops[len(hops)-1].Target != target {
				return false
			}
			for i, hop := range hops {
				if !routes.Has(hop) {
					return false
				}
				if i > 0 && hops[i-1].Target != hop.Source {
					return false
				}
			}
			return len(hops) <= 2
		},
		gen.UInt32(),
		languageGen(),
		languageGen(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
