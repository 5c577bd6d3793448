package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"horse.fit/mtroute/internal/auth"
	"horse.fit/mtroute/internal/language"
	"horse.fit/mtroute/internal/translation"
)

type fakeBackend struct {
	target language.Code
}

func (b fakeBackend) Translate(_ context.Context, text string, _ translation.TranslateOptions) (string, error) {
	return fmt.Sprintf("%s(%s)", b.target, text), nil
}

type fakeLoader struct {
	mu       sync.Mutex
	failures map[translation.BackendID]error
	acquired []string
}

func (l *fakeLoader) Acquire(_ context.Context, spec translation.BackendSpec) (translation.Backend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failures[spec.ID]; err != nil {
		return nil, err
	}
	l.acquired = append(l.acquired, spec.ID.String())
	return fakeBackend{target: spec.ID.Target}, nil
}

func newTestServer(t *testing.T, registry *translation.Registry, loader translation.Loader, opts Options) *Server {
	t.Helper()
	if registry == nil {
		registry = translation.NewDefaultRegistry()
	}
	cache := translation.NewBackendCache(loader, registry, zerolog.Nop())
	orchestrator := translation.NewOrchestrator(registry, cache, zerolog.Nop(), translation.Options{})
	return NewServer(orchestrator, zerolog.Nop(), opts)
}

func serve(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleTranslate_PivotRoute(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	e := newTestServer(t, nil, loader, Options{}).Handler()

	rec := serve(t, e, http.MethodPost, "/translate", `{"q":"Γειά","target":"zh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result translation.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TranslatedText != "zh(en(Γειά))" {
		t.Fatalf("unexpected translation: %q", result.TranslatedText)
	}
	if strings.Join(result.Route, ",") != "el->en,en->zh" {
		t.Fatalf("unexpected route: %v", result.Route)
	}
	if result.DetectedSource != "el" {
		t.Fatalf("unexpected detected source: %q", result.DetectedSource)
	}
	if result.DebugInfo != nil {
		t.Fatalf("expected no debug info without debug flag")
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); len(got) != 36 {
		t.Fatalf("expected uuid request id, got %q", got)
	}
}

func TestHandleTranslate_NoOp(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	e := newTestServer(t, nil, loader, Options{}).Handler()

	rec := serve(t, e, http.MethodPost, "/translate", `{"q":"hello","source":"auto","target":"en","debug":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	if body["translatedText"] != "hello" {
		t.Fatalf("unexpected translation: %v", body["translatedText"])
	}
	debugInfo, ok := body["debugInfo"].(map[string]any)
	if !ok {
		t.Fatalf("expected debugInfo object, got %v", body["debugInfo"])
	}
	if _, has := debugInfo["intermediate"]; has {
		t.Fatalf("expected no intermediate text for a no-op route")
	}
	if len(loader.acquired) != 0 {
		t.Fatalf("expected no backend acquisition, got %v", loader.acquired)
	}
}

func TestHandleTranslate_ClientErrors(t *testing.T) {
	t.Parallel()

	registry := translation.NewRegistry()
	for _, id := range []translation.BackendID{
		{Source: language.Greek, Target: language.English},
		{Source: language.Chinese, Target: language.English},
	} {
		if err := registry.Register(id, "model-"+id.String()); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{name: "malformed body", body: `{"q":`, message: "Validation failed", field: "body"},
		{name: "empty text", body: `{"q":"","target":"en"}`, message: "Validation failed", field: "q"},
		{name: "unknown target", body: `{"q":"hi","target":"fr"}`, message: "Validation failed", field: "target"},
		{name: "unknown source", body: `{"q":"hi","source":"de","target":"en"}`, message: "Validation failed", field: "source"},
		{name: "unparseable source", body: `{"q":"\u0393\u03b5\u03b9\u03ac","source":"klingon","target":"en"}`, message: "Validation failed", field: "source"},
		{name: "tokens over limit", body: `{"q":"hi","target":"en","max_new_tokens":5000}`, message: "Validation failed", field: "max_new_tokens"},
		{name: "unsupported route", body: `{"q":"hi","source":"zh","target":"el"}`, message: "unsupported translation route: zh->el"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loader := &fakeLoader{}
			e := newTestServer(t, registry, loader, Options{}).Handler()

			rec := serve(t, e, http.MethodPost, "/translate", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}

			body := decodeBody(t, rec)
			if body["status"] != "fail" {
				t.Fatalf("expected jsend fail, got %v", body["status"])
			}
			if body["message"] != tc.message {
				t.Fatalf("unexpected message: %v", body["message"])
			}
			detail, _ := body["detail"].(string)
			if tc.field == "" && detail != tc.message {
				t.Fatalf("detail must repeat the message, got %q", detail)
			}
			if tc.field != "" && !strings.Contains(detail, tc.field+": ") {
				t.Fatalf("detail does not name %q: %q", tc.field, detail)
			}
			if tc.field != "" {
				data, _ := body["data"].(map[string]any)
				fields, _ := data["validation_errors"].(map[string]any)
				if _, ok := fields[tc.field]; !ok {
					t.Fatalf("expected validation error on %q, got %v", tc.field, data)
				}
			}
			if len(loader.acquired) != 0 {
				t.Fatalf("expected no backend acquisition, got %v", loader.acquired)
			}
		})
	}
}

func TestHandleTranslate_LoadFailureNamesBackend(t *testing.T) {
	t.Parallel()

	elEn := translation.BackendID{Source: language.Greek, Target: language.English}
	loader := &fakeLoader{failures: map[translation.BackendID]error{elEn: errors.New("model not served")}}
	e := newTestServer(t, nil, loader, Options{}).Handler()

	rec := serve(t, e, http.MethodPost, "/translate", `{"q":"γεια","target":"zh"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusInternalServerError)
	}

	body := decodeBody(t, rec)
	if body["status"] != "error" {
		t.Fatalf("expected jsend error, got %v", body["status"])
	}
	if body["message"] != "Failed to load backend el->en" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	data, _ := body["data"].(map[string]any)
	if data["backend"] != "el->en" || data["model"] != "Helsinki-NLP/opus-mt-el-en" {
		t.Fatalf("unexpected error data: %v", data)
	}
}

func TestHandleTranslate_BodyLimit(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, nil, &fakeLoader{}, Options{BodyLimit: "64B"}).Handler()

	payload := fmt.Sprintf(`{"q":%q,"target":"en"}`, strings.Repeat("a", 256))
	rec := serve(t, e, http.MethodPost, "/translate", payload)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleDebugModel(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, nil, &fakeLoader{}, Options{DebugModelEndpoint: true}).Handler()

	rec := serve(t, e, http.MethodGet, "/debug_model?text=hello&src=en&tgt=el&max_new_tokens=32", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data, _ := body["data"].(map[string]any)
	if data["output"] != "el(hello)" {
		t.Fatalf("unexpected output: %v", data["output"])
	}
	if data["route"] != "en->el" || data["model"] != "Helsinki-NLP/opus-mt-en-el" {
		t.Fatalf("unexpected backend identity: %v", data)
	}
}

func TestHandleDebugModel_FailuresAreServerErrors(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, nil, &fakeLoader{}, Options{DebugModelEndpoint: true}).Handler()

	for _, target := range []string{
		"/debug_model?text=hello&src=el&tgt=zh",
		"/debug_model?src=en&tgt=el",
		"/debug_model?text=hello&src=en&tgt=el&max_new_tokens=lots",
	} {
		rec := serve(t, e, http.MethodGet, target, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: unexpected status: got %d want %d", target, rec.Code, http.StatusInternalServerError)
		}
	}
}

func TestHandleDebugModel_Disabled(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, nil, &fakeLoader{}, Options{DebugModelEndpoint: false}).Handler()

	rec := serve(t, e, http.MethodGet, "/debug_model?text=hello&src=en&tgt=el", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleHealthAndRoutes(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	e := newTestServer(t, nil, loader, Options{}).Handler()

	if rec := serve(t, e, http.MethodPost, "/translate", `{"q":"hello","target":"el"}`); rec.Code != http.StatusOK {
		t.Fatalf("warm-up translate failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := serve(t, e, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected health status: %d", rec.Code)
	}
	health, _ := decodeBody(t, rec)["data"].(map[string]any)
	loaded, _ := health["loaded_backends"].([]any)
	if len(loaded) != 1 || loaded[0] != "en->el" {
		t.Fatalf("unexpected loaded backends: %v", health["loaded_backends"])
	}

	rec = serve(t, e, http.MethodGet, "/api/v1/routes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected routes status: %d", rec.Code)
	}
	routes, _ := decodeBody(t, rec)["data"].(map[string]any)
	if items, _ := routes["routes"].([]any); len(items) != 4 {
		t.Fatalf("expected 4 routes, got %v", routes["routes"])
	}
	if langs, _ := routes["languages"].([]any); len(langs) != 3 {
		t.Fatalf("expected 3 languages, got %v", routes["languages"])
	}
	if routes["hub"] != "en" {
		t.Fatalf("unexpected hub: %v", routes["hub"])
	}
}

func TestHandleDebugModel_RequiresConfiguredToken(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashToken("diag-secret")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	e := newTestServer(t, nil, &fakeLoader{}, Options{
		DebugModelEndpoint:  true,
		DebugModelTokenHash: hash,
	}).Handler()

	tests := []struct {
		name          string
		authorization string
		want          int
	}{
		{name: "missing", authorization: "", want: http.StatusUnauthorized},
		{name: "wrong", authorization: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", authorization: "Bearer diag-secret", want: http.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/debug_model?text=hello&src=en&tgt=zh", nil)
		if tc.authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, tc.authorization)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: unexpected status: got %d want %d", tc.name, rec.Code, tc.want)
		}
	}
}
