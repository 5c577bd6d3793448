package translation

import (
	"context"
	"fmt"

	"horse.fit/mtroute/internal/language"
)

// BackendID names one directional translation capability.
type BackendID struct {
	Source language.Code
	Target language.Code
}

// String renders the hop label, for example "el->en".
func (id BackendID) String() string {
	return fmt.Sprintf("%s->%s", id.Source, id.Target)
}

// BackendSpec is what a Loader needs to acquire one backend.
type BackendSpec struct {
	ID    BackendID
	Model string
}

// TranslateOptions bound a single backend invocation.
type TranslateOptions struct {
	MaxNewTokens int
}

// Backend is an acquired translation backend. Implementations must tolerate
// concurrent Translate calls unless they also implement ConcurrencyReporter
// and report false.
type Backend interface {
	Translate(ctx context.Context, text string, opts TranslateOptions) (string, error)
}

// ConcurrencyReporter is implemented by backends that can tell whether they
// accept concurrent invocations.
type ConcurrencyReporter interface {
	ConcurrencySafe() bool
}

// Loader fetches and instantiates a backend. Acquisition may be slow.
type Loader interface {
	Acquire(ctx context.Context, spec BackendSpec) (Backend, error)
}
