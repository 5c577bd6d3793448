package translation

import (
	"errors"
	"fmt"
	"strings"

	"horse.fit/mtroute/internal/language"
)

var (
	ErrValidation       = errors.New("invalid translation request")
	ErrUnsupportedRoute = errors.New("unsupported translation route")
	ErrBackendLoad      = errors.New("backend load failed")
	ErrBackendInvoke    = errors.New("backend translation failed")
)

// ValidationError rejects a request before any routing happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RouteError names a (source, target) pair with no direct or pivot route.
type RouteError struct {
	Source language.Code
	Target language.Code
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("unsupported translation route: %s->%s", e.Source, e.Target)
}

func (e *RouteError) Is(target error) bool {
	return target == ErrUnsupportedRoute
}

// BackendError reports a failed acquisition or invocation. Kind is
// ErrBackendLoad or ErrBackendInvoke.
type BackendError struct {
	Kind    error
	Backend BackendID
	Model   string
	Route   []string
	Err     error
}

func (e *BackendError) Error() string {
	action := "translate with"
	if e.Kind == ErrBackendLoad {
		action = "load"
	}
	msg := fmt.Sprintf("%s backend %s", action, e.Backend)
	if e.Model != "" {
		msg += fmt.Sprintf(" (%s)", e.Model)
	}
	if len(e.Route) > 0 {
		msg += fmt.Sprintf(" on route [%s]", strings.Join(e.Route, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
