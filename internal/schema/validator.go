package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed translate_request.schema.json
var translateRequestSchemaJSON string

const bodyField = "body"

// TranslateRequest is the decoded POST /translate body.
type TranslateRequest struct {
	Q            string `json:"q"`
	Source       string `json:"source,omitempty"`
	Target       string `json:"target"`
	MaxNewTokens *int   `json:"max_new_tokens,omitempty"`
	Debug        bool   `json:"debug,omitempty"`
}

// MaxNewTokensOrZero returns the requested bound, or 0 when the body omitted it.
func (r *TranslateRequest) MaxNewTokensOrZero() int {
	if r == nil || r.MaxNewTokens == nil {
		return 0
	}
	return *r.MaxNewTokens
}

// ValidationError lists schema violations keyed by request field. Problems
// with the body as a whole are keyed "body".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func ValidateTranslateRequest(payload []byte) (*TranslateRequest, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{bodyField: err.Error()}}
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		var schemaErr *jsonschema.ValidationError
		if errors.As(err, &schemaErr) {
			return nil, &ValidationError{Fields: fieldErrors(schemaErr)}
		}
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var req TranslateRequest
	if err := json.Unmarshal(normalized, &req); err != nil {
		return nil, &ValidationError{Fields: map[string]string{bodyField: err.Error()}}
	}

	return &req, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("translate_request.schema.json", strings.NewReader(translateRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("translate_request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

// fieldErrors flattens the leaf causes of a schema failure. The first
// message per field wins.
func fieldErrors(err *jsonschema.ValidationError) map[string]string {
	out := map[string]string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				field = bodyField
			}
			if _, seen := out[field]; !seen {
				out[field] = e.Message
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	if len(out) == 0 {
		out[bodyField] = err.Message
	}
	return out
}
