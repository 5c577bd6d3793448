package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"horse.fit/mtroute/internal/globaltime"
	"horse.fit/mtroute/internal/langdetect"
	"horse.fit/mtroute/internal/language"
	"horse.fit/mtroute/internal/logging"
)

const (
	DefaultMaxNewTokens      = 256
	DefaultMaxNewTokensLimit = 1024
)

// Request is one translation request as received from a caller.
type Request struct {
	Text         string
	Source       string // "auto", blank or a language code
	Target       string
	MaxNewTokens int // 0 selects the configured default
	Debug        bool
}

// Result is the translated text plus provenance.
type Result struct {
	TranslatedText string   `json:"translatedText"`
	Route          []string `json:"route"`
	DetectedSource string   `json:"detectedSource"`
	DebugInfo      *Trace   `json:"debugInfo,omitempty"`
}

// Trace is attached to a Result when the caller asks for debug output.
type Trace struct {
	TraceID        string    `json:"traceId"`
	Input          string    `json:"input"`
	DeclaredSource string    `json:"declaredSource"`
	DetectedSource string    `json:"detectedSource"`
	Target         string    `json:"target"`
	Backends       []string  `json:"backends"`
	Intermediate   *string   `json:"intermediate,omitempty"`
	MaxNewTokens   int       `json:"maxNewTokens"`
	Timestamp      time.Time `json:"timestamp"`
}

// DirectRequest invokes exactly one backend, bypassing routing.
type DirectRequest struct {
	Text         string
	Source       string
	Target       string
	MaxNewTokens int
}

// DirectResult is the raw output of a single backend.
type DirectResult struct {
	Output string `json:"output"`
	Route  string `json:"route"`
	Model  string `json:"model"`
}

type Options struct {
	DefaultMaxNewTokens int
	MaxNewTokensLimit   int
}

// Orchestrator detects, routes and drives backends for translation requests.
type Orchestrator struct {
	routes *Registry
	cache  *BackendCache
	detect func(string) language.Code
	logger zerolog.Logger
	opts   Options
}

func NewOrchestrator(routes *Registry, cache *BackendCache, logger zerolog.Logger, opts Options) *Orchestrator {
	if opts.DefaultMaxNewTokens <= 0 {
		opts.DefaultMaxNewTokens = DefaultMaxNewTokens
	}
	if opts.MaxNewTokensLimit <= 0 {
		opts.MaxNewTokensLimit = DefaultMaxNewTokensLimit
	}
	if opts.DefaultMaxNewTokens > opts.MaxNewTokensLimit {
		opts.DefaultMaxNewTokens = opts.MaxNewTokensLimit
	}
	return &Orchestrator{
		routes: routes,
		cache:  cache,
		detect: langdetect.Detect,
		logger: logging.Component(logger, "orchestrator"),
		opts:   opts,
	}
}

// Routes exposes the known-routes table.
func (o *Orchestrator) Routes() *Registry {
	if o == nil {
		return nil
	}
	return o.routes
}

// LoadedBackends lists the backends acquired so far.
func (o *Orchestrator) LoadedBackends() []string {
	if o == nil {
		return nil
	}
	return o.cache.Loaded()
}

// Execute translates req. A declared source is trusted as-is; only "auto"
// triggers detection.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Result, error) {
	if o == nil || o.routes == nil || o.cache == nil {
		return nil, fmt.Errorf("orchestrator is not initialized")
	}

	target, err := o.parseTarget(req.Target)
	if err != nil {
		return nil, err
	}
	declared := language.ParseSource(req.Source)
	if declared != language.Auto && !o.routes.Knows(declared) {
		return nil, &ValidationError{Field: "source", Message: "must be auto or one of: " + o.knownLanguages()}
	}
	maxNewTokens, err := o.maxNewTokens(req.MaxNewTokens)
	if err != nil {
		return nil, err
	}

	source := declared
	if source == language.Auto {
		source = o.detect(req.Text)
	}

	decision := Resolve(source, target, o.routes)
	result := &Result{
		Route:          decision.Labels(),
		DetectedSource: source.String(),
	}

	var trace *Trace
	if req.Debug {
		trace = &Trace{
			TraceID:        uuid.NewString(),
			Input:          req.Text,
			DeclaredSource: declared.String(),
			DetectedSource: source.String(),
			Target:         target.String(),
			Backends:       []string{},
			MaxNewTokens:   maxNewTokens,
			Timestamp:      globaltime.UTC(),
		}
	}

	opts := TranslateOptions{MaxNewTokens: maxNewTokens}
	switch d := decision.(type) {
	case NoOp:
		result.TranslatedText = req.Text
	case Direct:
		out, err := o.invoke(ctx, d.Hop, req.Text, opts, result.Route, trace)
		if err != nil {
			return nil, err
		}
		result.TranslatedText = out
	case Pivot:
		intermediate, err := o.invoke(ctx, d.First, req.Text, opts, result.Route, trace)
		if err != nil {
			return nil, err
		}
		if trace != nil {
			trace.Intermediate = &intermediate
		}
		out, err := o.invoke(ctx, d.Second, intermediate, opts, result.Route, trace)
		if err != nil {
			return nil, err
		}
		result.TranslatedText = out
	case Unsupported:
		return nil, &RouteError{Source: d.Source, Target: d.Target}
	default:
		return nil, fmt.Errorf("unhandled route decision %T", decision)
	}

	result.DebugInfo = trace
	return result, nil
}

// TranslateDirect runs one named backend without detection or pivoting.
func (o *Orchestrator) TranslateDirect(ctx context.Context, req DirectRequest) (*DirectResult, error) {
	if o == nil || o.routes == nil || o.cache == nil {
		return nil, fmt.Errorf("orchestrator is not initialized")
	}

	hop := BackendID{
		Source: language.Code(language.NormalizeCode(req.Source)),
		Target: language.Code(language.NormalizeCode(req.Target)),
	}
	model, ok := o.routes.Model(hop)
	if !ok {
		return nil, &RouteError{Source: hop.Source, Target: hop.Target}
	}
	maxNewTokens, err := o.maxNewTokens(req.MaxNewTokens)
	if err != nil {
		return nil, err
	}

	out, err := o.invoke(ctx, hop, req.Text, TranslateOptions{MaxNewTokens: maxNewTokens}, []string{hop.String()}, nil)
	if err != nil {
		return nil, err
	}
	return &DirectResult{Output: out, Route: hop.String(), Model: model}, nil
}

// invoke runs one hop. Every hop input is NFC-normalized first, including
// the intermediate text of a pivot.
func (o *Orchestrator) invoke(
	ctx context.Context,
	hop BackendID,
	text string,
	opts TranslateOptions,
	route []string,
	trace *Trace,
) (string, error) {
	model, _ := o.routes.Model(hop)

	handle, err := o.cache.GetOrAcquire(ctx, hop)
	if err != nil {
		var backendErr *BackendError
		if errors.As(err, &backendErr) {
			backendErr.Route = route
			return "", backendErr
		}
		return "", &BackendError{Kind: ErrBackendLoad, Backend: hop, Model: model, Route: route, Err: err}
	}

	started := globaltime.Now()
	out, err := handle.Translate(ctx, norm.NFC.String(text), opts)
	if err != nil {
		return "", &BackendError{Kind: ErrBackendInvoke, Backend: hop, Model: model, Route: route, Err: err}
	}

	o.logger.Debug().
		Str("backend", hop.String()).
		Str("model", model).
		Int("input_runes", len([]rune(text))).
		Dur("latency", globaltime.Since(started)).
		Msg("backend hop completed")

	if trace != nil {
		trace.Backends = append(trace.Backends, model)
	}
	return out, nil
}

func (o *Orchestrator) parseTarget(raw string) (language.Code, error) {
	target := language.ParseTarget(raw)
	if target == "" || !o.routes.Knows(target) {
		return "", &ValidationError{Field: "target", Message: "must be one of: " + o.knownLanguages()}
	}
	return target, nil
}

func (o *Orchestrator) maxNewTokens(requested int) (int, error) {
	switch {
	case requested == 0:
		return o.opts.DefaultMaxNewTokens, nil
	case requested < 0:
		return 0, &ValidationError{Field: "max_new_tokens", Message: "must be positive"}
	case requested > o.opts.MaxNewTokensLimit:
		return 0, &ValidationError{Field: "max_new_tokens", Message: fmt.Sprintf("must be <= %d", o.opts.MaxNewTokensLimit)}
	default:
		return requested, nil
	}
}

func (o *Orchestrator) knownLanguages() string {
	codes := o.routes.Languages()
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, code.String())
	}
	return strings.Join(parts, ",")
}
