package translation

import "horse.fit/mtroute/internal/language"

// RouteSet answers whether a direct backend exists for a BackendID.
type RouteSet interface {
	Has(id BackendID) bool
}

// RouteDecision is one of NoOp, Direct, Pivot or Unsupported.
type RouteDecision interface {
	// Hops lists the backends the decision invokes, in order.
	Hops() []BackendID
	// Labels renders the route for API output.
	Labels() []string

	routeDecision()
}

// NoOpLabel marks a route where source and target are the same language.
const NoOpLabel = "noop"

type NoOp struct{}

type Direct struct {
	Hop BackendID
}

type Pivot struct {
	First  BackendID
	Second BackendID
}

type Unsupported struct {
	Source language.Code
	Target language.Code
}

func (NoOp) Hops() []BackendID        { return nil }
func (d Direct) Hops() []BackendID    { return []BackendID{d.Hop} }
func (p Pivot) Hops() []BackendID     { return []BackendID{p.First, p.Second} }
func (Unsupported) Hops() []BackendID { return nil }

func (NoOp) Labels() []string        { return []string{NoOpLabel} }
func (d Direct) Labels() []string    { return hopLabels(d.Hops()) }
func (p Pivot) Labels() []string     { return hopLabels(p.Hops()) }
func (Unsupported) Labels() []string { return nil }

func (NoOp) routeDecision()        {}
func (Direct) routeDecision()      {}
func (Pivot) routeDecision()       {}
func (Unsupported) routeDecision() {}

// Resolve picks a route from source to target. Rules are checked in order:
// same language, direct backend, two hops through language.Hub, unsupported.
// The pivot only ever goes through the hub; the route table is assumed to be
// star-shaped around it.
func Resolve(source, target language.Code, known RouteSet) RouteDecision {
	if source == target {
		return NoOp{}
	}

	direct := BackendID{Source: source, Target: target}
	if known != nil && known.Has(direct) {
		return Direct{Hop: direct}
	}

	first := BackendID{Source: source, Target: language.Hub}
	second := BackendID{Source: language.Hub, Target: target}
	if known != nil && known.Has(first) && known.Has(second) {
		return Pivot{First: first, Second: second}
	}

	return Unsupported{Source: source, Target: target}
}

func hopLabels(hops []BackendID) []string {
	labels := make([]string, 0, len(hops))
	for _, hop := range hops {
		labels = append(labels, hop.String())
	}
	return labels
}
