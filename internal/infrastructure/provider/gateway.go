package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/config"
	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

const (
	_defaultBaseURL        = "https://openrouter.ai/api/v1"
	_defaultAttemptTimeout = 120 * time.Second
	_defaultMaxTokens      = 2000
	_defaultTemperature    = 0.7

	_snippetLen       = 200
	_maxResponseBytes = 64 << 20
)

// FallbackModels are tried, in order, after the configured model.
var FallbackModels = []string{
	"google/gemini-2.5-flash-image-preview",
	"google/gemini-2.5-flash",
	"google/gemini-2.5-pro",
	"google/gemini-flash-1.5",
}

var (
	jsonContentTypeRe = regexp.MustCompile(`(?i)application/json`)
	notFoundBodyRe    = regexp.MustCompile(`(?i)No endpoints found`)

	errDecode = errors.New("response is not valid JSON")
)

// Candidates builds the ordered model list: trimmed, non-empty, de-duplicated,
// with known-invalid identifiers removed.
func Candidates(models ...string) []string {
	all := append(append([]string{}, models...), FallbackModels...)

	seen := make(map[string]struct{}, len(all))
	res := make([]string, 0, len(all))

	for _, m := range all {
		m = strings.TrimSpace(m)
		if m == "" || config.IsInvalidModel(m) {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		res = append(res, m)
	}

	return res
}

// attemptError describes one failed candidate/shape attempt.
type attemptError struct {
	status      int
	contentType string
	body        string
	notFound    bool
}

func (e *attemptError) Error() string {
	return fmt.Sprintf("status=%d ct=%s body=%s", e.status, e.contentType, e.body)
}

type Gateway struct {
	client *http.Client
	logger logger.Interface

	apiKey     string
	candidates []string

	baseURL        string
	referer        string
	title          string
	userAgent      string
	attemptTimeout time.Duration
	maxTokens      int
	temperature    float64
}

func New(apiKey string, candidates []string, l logger.Interface, opts ...Option) *Gateway {
	g := &Gateway{
		client:         &http.Client{},
		logger:         l,
		apiKey:         apiKey,
		candidates:     candidates,
		baseURL:        _defaultBaseURL,
		attemptTimeout: _defaultAttemptTimeout,
		maxTokens:      _defaultMaxTokens,
		temperature:    _defaultTemperature,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.baseURL = strings.TrimRight(g.baseURL, "/")

	return g
}

func (g *Gateway) Ready() error {
	if g.apiKey == "" {
		return errs.ErrMissingCredential
	}

	return nil
}

// Generate walks the candidates until one returns a JSON body. Each
// candidate/shape pair is attempted at most once.
func (g *Gateway) Generate(ctx context.Context, req dto.GenerationRequest) (*dto.Generation, error) {
	if err := g.Ready(); err != nil {
		return nil, fmt.Errorf("Gateway - Generate: %w", err)
	}

	dataURI := req.Image.DataURI()
	lastErr := ""

	for _, model := range g.candidates {
		g.logger.Info("Trying model: %s", model)

		body := newResponsesRequest(model, req.Prompt, dataURI, g.maxTokens, g.temperature)
		payload, err := g.attempt(ctx, "/responses", body)
		if err == nil {
			return g.success(model, dto.ShapeResponses, payload)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("Gateway - Generate: %w", ctx.Err())
		}

		lastErr = err.Error()
		g.logger.Warn("Responses API non-JSON or error for %s: %s", model, lastErr)

		var ae *attemptError
		if errors.As(err, &ae) && ae.notFound {
			continue
		}
		if errors.Is(err, errDecode) {
			continue
		}

		chat := newChatRequest(model, req.Prompt, dataURI, g.maxTokens, g.temperature)
		payload, err = g.attempt(ctx, "/chat/completions", chat)
		if err == nil {
			return g.success(model, dto.ShapeChat, payload)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("Gateway - Generate: %w", ctx.Err())
		}

		lastErr = err.Error()
		g.logger.Warn("Chat API non-JSON or error for %s: %s", model, lastErr)
	}

	if lastErr == "" {
		lastErr = "all model attempts failed"
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrProviderExhausted, lastErr)
}

func (g *Gateway) success(model string, shape dto.Shape, payload []byte) (*dto.Generation, error) {
	g.logger.Info("Provider response received using model %s (%s)", model, shape)

	return &dto.Generation{
		Payload: payload,
		Model:   model,
		Shape:   shape,
	}, nil
}

func (g *Gateway) attempt(ctx context.Context, path string, body any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("Gateway - attempt - json.Marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("Gateway - attempt - http.NewRequestWithContext: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Gateway - attempt - g.client.Do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, _maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("Gateway - attempt - io.ReadAll: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !jsonContentTypeRe.MatchString(ct) {
		return nil, &attemptError{
			status:      resp.StatusCode,
			contentType: ct,
			body:        snippet(raw),
			notFound:    resp.StatusCode == http.StatusNotFound || notFoundBodyRe.Match(raw),
		}
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("Gateway - attempt: %w", errDecode)
	}

	return raw, nil
}

func (g *Gateway) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.referer != "" {
		req.Header.Set("HTTP-Referer", g.referer)
	}
	if g.title != "" {
		req.Header.Set("X-Title", g.title)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
}

func snippet(b []byte) string {
	if len(b) > _snippetLen {
		b = b[:_snippetLen]
	}

	return string(b)
}
