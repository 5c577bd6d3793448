package translation

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible inference server.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalTimeout bounds one HTTP call to the inference server.
	DefaultLocalTimeout = 120 * time.Second

	// go-openai omits a zero temperature, so greedy decoding sends the
	// smallest positive value instead.
	greedyTemperature = math.SmallestNonzeroFloat32
)

// LocalLoaderOptions configure LocalLoader.
type LocalLoaderOptions struct {
	Endpoint  string
	APIKey    string
	Timeout   time.Duration
	Serialize bool // the server cannot serve concurrent requests per model
}

// LocalLoader acquires backends served by an OpenAI-compatible endpoint.
// Acquisition checks that the route's model is listed by the server.
type LocalLoader struct {
	baseURL   string
	serialize bool
	client    *openai.Client
}

func NewLocalLoader(opts LocalLoaderOptions) *LocalLoader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLocalTimeout
	}
	baseURL := normalizeEndpoint(opts.Endpoint)

	clientConfig := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &LocalLoader{
		baseURL:   baseURL,
		serialize: opts.Serialize,
		client:    openai.NewClientWithConfig(clientConfig),
	}
}

// Endpoint returns the normalized base URL.
func (l *LocalLoader) Endpoint() string {
	if l == nil {
		return ""
	}
	return l.baseURL
}

func (l *LocalLoader) Acquire(ctx context.Context, spec BackendSpec) (Backend, error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("local loader is nil")
	}
	model := strings.TrimSpace(spec.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	listed, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	served := false
	for _, entry := range listed.Models {
		if entry.ID == model {
			served = true
			break
		}
	}
	if !served {
		return nil, fmt.Errorf("model %q is not served by %s", model, l.baseURL)
	}

	return &LocalBackend{
		loader: l,
		spec:   BackendSpec{ID: spec.ID, Model: model},
	}, nil
}

// LocalBackend is one model on the inference server.
type LocalBackend struct {
	loader *LocalLoader
	spec   BackendSpec
}

// Model returns the served model identifier.
func (b *LocalBackend) Model() string {
	if b == nil {
		return ""
	}
	return b.spec.Model
}

func (b *LocalBackend) ConcurrencySafe() bool {
	if b == nil || b.loader == nil {
		return true
	}
	return !b.loader.serialize
}

// Translate sends text as the only user message and decodes greedily.
func (b *LocalBackend) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if b == nil || b.loader == nil || b.loader.client == nil {
		return "", fmt.Errorf("local backend is nil")
	}

	resp, err := b.loader.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.spec.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   opts.MaxNewTokens,
		Temperature: greedyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translation response missing choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// normalizeEndpoint returns a base URL ending in the API version path,
// without a trailing slash.
func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint
	}
	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/chat/completions")
	if path == "" {
		path = "/v1"
	}
	parsed.Path = path
	return parsed.String()
}
