package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

const (
	_defaultFetchTimeout = 30 * time.Second
	_defaultFetchMIME    = "image/png"
	_maxImageBytes       = 32 << 20
)

// Fetcher downloads a remote result image and inlines it.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = _defaultFetchTimeout
	}

	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: _maxImageBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (entity.InlineImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.InlineImage{}, fmt.Errorf("Fetcher - Fetch - http.NewRequestWithContext: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return entity.InlineImage{}, fmt.Errorf("Fetcher - Fetch - f.client.Do: %w: %w", errs.ErrRemoteFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entity.InlineImage{}, fmt.Errorf("Fetcher - Fetch: %w: status %d", errs.ErrRemoteFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return entity.InlineImage{}, fmt.Errorf("Fetcher - Fetch - io.ReadAll: %w: %w", errs.ErrRemoteFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return entity.InlineImage{}, fmt.Errorf("Fetcher - Fetch: %w: image exceeds %d bytes", errs.ErrRemoteFetch, f.maxBytes)
	}

	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if mime == "" {
		mime = _defaultFetchMIME
	}

	return entity.NewInlineImage(data, mime), nil
}
