package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name     string
		ct       string
		status   int
		wantMIME string
		wantErr  bool
	}{
		{name: "content type parameters are dropped", ct: "image/jpeg; charset=binary", status: http.StatusOK, wantMIME: "image/jpeg"},
		{name: "missing content type defaults to png", ct: "", status: http.StatusOK, wantMIME: "image/png"},
		{name: "non 2xx is an error", ct: "image/png", status: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = []string{tt.ct}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("image-bytes"))
			}))
			defer srv.Close()

			img, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/result.png")
			if tt.wantErr {
				if !errors.Is(err, errs.ErrRemoteFetch) {
					t.Fatalf("expected ErrRemoteFetch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Fatalf("expected mime %q, got %q", tt.wantMIME, img.MIMEType)
			}
			b, _ := img.Bytes()
			if string(b) != "image-bytes" {
				t.Fatalf("unexpected bytes %q", b)
			}
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, errs.ErrRemoteFetch) {
		t.Fatalf("expected ErrRemoteFetch, got %v", err)
	}
}

func TestFetchRejectsOversizedImage(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "at the limit", size: 16},
		{name: "one byte over", size: 17, wantErr: true},
		{name: "far over", size: 4096, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write(make([]byte, tt.size))
			}))
			defer srv.Close()

			f := NewFetcher(time.Second)
			f.maxBytes = 16

			img, err := f.Fetch(context.Background(), srv.URL)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrRemoteFetch) {
					t.Fatalf("expected ErrRemoteFetch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b, _ := img.Bytes(); len(b) != tt.size {
				t.Fatalf("expected %d bytes, got %d", tt.size, len(b))
			}
		})
	}
}
