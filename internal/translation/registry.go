package translation

import (
	"fmt"
	"sort"
	"strings"

	"horse.fit/mtroute/internal/language"
)

// DefaultRouteModels is the built-in known-routes table.
var DefaultRouteModels = map[BackendID]string{
	{Source: language.Greek, Target: language.English}:   "Helsinki-NLP/opus-mt-el-en",
	{Source: language.English, Target: language.Greek}:   "Helsinki-NLP/opus-mt-en-el",
	{Source: language.Chinese, Target: language.English}: "Helsinki-NLP/opus-mt-zh-en",
	{Source: language.English, Target: language.Chinese}: "Helsinki-NLP/opus-mt-en-zh",
}

// Route is one entry of the known-routes table.
type Route struct {
	ID    BackendID `json:"-"`
	Label string    `json:"route"`
	Model string    `json:"model"`
}

// Registry is the static known-routes table. It maps each BackendID to
// exactly one backend model identifier.
type Registry struct {
	routes map[BackendID]string
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[BackendID]string)}
}

// NewDefaultRegistry returns a registry holding DefaultRouteModels.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	for id, model := range DefaultRouteModels {
		_ = registry.Register(id, model)
	}
	return registry
}

// NewRegistryFromConfig builds a registry from "src-tgt" keys. An empty map
// yields the default table.
func NewRegistryFromConfig(models map[string]string) (*Registry, error) {
	if len(models) == 0 {
		return NewDefaultRegistry(), nil
	}

	registry := NewRegistry()
	for key, model := range models {
		id, err := ParseRouteKey(key)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(id, model); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// ParseRouteKey parses "el-en" (or "el->en") into a BackendID.
func ParseRouteKey(raw string) (BackendID, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "->", "-")
	parts := strings.Split(normalized, "-")
	if len(parts) != 2 {
		return BackendID{}, fmt.Errorf("route key %q must look like src-tgt", raw)
	}
	return routeID(parts[0], parts[1], raw)
}

func routeID(rawSource, rawTarget, raw string) (BackendID, error) {
	source := language.Code(language.NormalizeCode(rawSource))
	target := language.Code(language.NormalizeCode(rawTarget))
	if source == "" || target == "" {
		return BackendID{}, fmt.Errorf("route key %q has an invalid language code", raw)
	}
	if source == language.Auto || target == language.Auto {
		return BackendID{}, fmt.Errorf("route key %q cannot use %q", raw, language.Auto)
	}
	if source == target {
		return BackendID{}, fmt.Errorf("route key %q must join two different languages", raw)
	}
	return BackendID{Source: source, Target: target}, nil
}

// Register adds one route. A BackendID can only be bound to one model.
func (r *Registry) Register(id BackendID, model string) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("route %s: model is required", id)
	}
	if existing, exists := r.routes[id]; exists && existing != model {
		return fmt.Errorf("route %s is already bound to %q", id, existing)
	}
	r.routes[id] = model
	return nil
}

// Has reports whether a direct backend exists for id.
func (r *Registry) Has(id BackendID) bool {
	if r == nil {
		return false
	}
	_, ok := r.routes[id]
	return ok
}

// Model resolves the backend model identifier for id.
func (r *Registry) Model(id BackendID) (string, bool) {
	if r == nil {
		return "", false
	}
	model, ok := r.routes[id]
	return model, ok
}

// Languages returns every code that appears in the table, sorted.
func (r *Registry) Languages() []language.Code {
	if r == nil {
		return nil
	}
	seen := make(map[language.Code]struct{}, len(r.routes)*2)
	for id := range r.routes {
		seen[id.Source] = struct{}{}
		seen[id.Target] = struct{}{}
	}
	codes := make([]language.Code, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Knows reports whether code belongs to the known language set.
func (r *Registry) Knows(code language.Code) bool {
	if r == nil {
		return false
	}
	for id := range r.routes {
		if id.Source == code || id.Target == code {
			return true
		}
	}
	return false
}

// Routes lists the table sorted by label.
func (r *Registry) Routes() []Route {
	if r == nil {
		return nil
	}
	routes := make([]Route, 0, len(r.routes))
	for id, model := range r.routes {
		routes = append(routes, Route{ID: id, Label: id.String(), Model: model})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Label < routes[j].Label })
	return routes
}
