package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/config"
	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/events"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/image"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/retention"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase/transform"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

type noGateway struct{}

func (noGateway) Ready() error { return nil }

func (noGateway) Generate(context.Context, dto.GenerationRequest) (*dto.Generation, error) {
	panic("provider must not be called in mock mode")
}

type noFetcher struct{}

func (noFetcher) Fetch(context.Context, string) (entity.InlineImage, error) {
	return entity.InlineImage{}, nil
}

type passthrough struct{}

func (passthrough) PrepareInput(_ context.Context, img entity.InlineImage) (entity.InlineImage, error) {
	return img, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	l := logger.NewNop()

	cfg := &config.Config{}
	cfg.HTTP.Host, cfg.HTTP.Port = "127.0.0.1", "3000"
	cfg.Provider.Model = config.DefaultModel
	cfg.Transform.MockEnabled = true
	cfg.Retention.JobTTLMillis = 600000

	jobs, blobs := inmemory.NewJobRepo(), inmemory.NewBlobRepo()
	ev := events.New(inmemory.NewOutboxRepo(), false, l)
	sched := retention.New(jobs, blobs, ev, l, cfg.JobTTL())
	tr := transform.New(jobs, blobs, sched, ev, passthrough{}, noGateway{}, noFetcher{}, l, transform.Settings{
		Mock:          true,
		MockStepDelay: 5 * time.Millisecond,
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tr.Shutdown(ctx)
		sched.Shutdown()
	})

	app := fiber.New(fiber.Config{
		BodyLimit:    12 << 20,
		ErrorHandler: ErrorHandler(l),
	})
	NewRouter(app, cfg, image.New(blobs, l), tr, l)

	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func uploadRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="me.png"`)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}

	return v
}

type errorBody struct {
	Error string `json:"error"`
}

func TestUploadPhoto(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{name: "image accepted", req: uploadRequest(t, "photo", "image/png", []byte("png")), wantStatus: http.StatusOK},
		{name: "wrong field", req: uploadRequest(t, "file", "image/png", []byte("png")), wantStatus: http.StatusBadRequest},
		{name: "non image", req: uploadRequest(t, "photo", "text/plain", []byte("hello")), wantStatus: http.StatusBadRequest},
		{name: "over 10MB", req: uploadRequest(t, "photo", "image/jpeg", bytes.Repeat([]byte{1}, image.MaxUploadBytes+1)), wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.req)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, status, body)
			}

			if status == http.StatusOK {
				resp := decode[struct {
					Success bool   `json:"success"`
					ImageID string `json:"imageId"`
					Message string `json:"message"`
				}](t, body)
				if !resp.Success || resp.ImageID == "" {
					t.Fatalf("unexpected response %s", body)
				}
			} else if decode[errorBody](t, body).Error == "" {
				t.Fatalf("expected error message, got %s", body)
			}
		})
	}
}

func TestTransformUnknownImage(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{`{"imageId":"nope"}`, `{}`, ``} {
		status, resp := do(t, app, jsonRequest(http.MethodPost, "/api/transform", body))
		if status != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, status)
		}
		if got := decode[errorBody](t, resp).Error; got != "Invalid image ID" {
			t.Fatalf("body %q: unexpected error %q", body, got)
		}
	}
}

func TestTransformAcceptsAnyParameterValues(t *testing.T) {
	app := newTestApp(t)

	for _, params := range []string{
		`"amount":"30"`,
		`"transformationType":5`,
		`"transformationType":null,"amount":{"kg":3}`,
	} {
		_, body := do(t, app, uploadRequest(t, "photo", "image/png", []byte("png")))
		imageID := decode[struct {
			ImageID string `json:"imageId"`
		}](t, body).ImageID

		status, body := do(t, app, jsonRequest(http.MethodPost, "/api/transform", `{"imageId":"`+imageID+`",`+params+`}`))
		if status != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", params, status, body)
		}
	}
}

type jobStatus struct {
	JobID       string  `json:"jobId"`
	Status      string  `json:"status"`
	OriginalURL string  `json:"originalUrl"`
	ResultURL   *string `json:"resultUrl"`
	Error       *string `json:"error"`
	Progress    int     `json:"progress"`
}

func TestTransformLifecycle(t *testing.T) {
	app := newTestApp(t)

	_, body := do(t, app, uploadRequest(t, "photo", "image/png", []byte("png-bytes")))
	imageID := decode[struct {
		ImageID string `json:"imageId"`
	}](t, body).ImageID

	status, body := do(t, app, jsonRequest(http.MethodPost, "/api/transform", `{"imageId":"`+imageID+`"}`))
	if status != http.StatusOK {
		t.Fatalf("transform: %d %s", status, body)
	}
	started := decode[struct {
		Success bool   `json:"success"`
		JobID   string `json:"jobId"`
	}](t, body)
	if !started.Success || started.JobID == "" {
		t.Fatalf("unexpected transform response %s", body)
	}

	var js jobStatus
	deadline := time.Now().Add(3 * time.Second)
	for {
		status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/job-status/"+started.JobID, nil))
		if status != http.StatusOK {
			t.Fatalf("job-status: %d %s", status, body)
		}
		js = decode[jobStatus](t, body)
		if js.Status != "processing" || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if js.Status != "completed" || js.Progress != 100 || js.Error != nil {
		t.Fatalf("unexpected final status %+v", js)
	}
	if !strings.HasPrefix(js.OriginalURL, "data:image/png;base64,") {
		t.Fatalf("originalUrl must be a data URI, got %q", js.OriginalURL)
	}
	if js.ResultURL == nil || *js.ResultURL != js.OriginalURL {
		t.Fatal("mock result must equal the original")
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/job/"+started.JobID, nil))
	if status != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", status)
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/job-status/"+started.JobID, nil))
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/job/"+started.JobID, nil))
	if status != http.StatusNoContent {
		t.Fatalf("second delete: expected 204, got %d", status)
	}

	// the blob went with the job
	status, _ = do(t, app, jsonRequest(http.MethodPost, "/api/transform", `{"imageId":"`+imageID+`"}`))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for evicted image, got %d", status)
	}
}

func TestJobStatusUnknown(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/job-status/missing", nil))
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if got := decode[errorBody](t, body).Error; got != "Job not found" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestHealthAndConfig(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if status != http.StatusOK {
		t.Fatalf("health: %d", status)
	}
	health := decode[struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}](t, body)
	if health.Status != "ok" || health.Timestamp.IsZero() {
		t.Fatalf("unexpected health %s", body)
	}

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if status != http.StatusOK {
		t.Fatalf("config: %d", status)
	}
	cfg := decode[map[string]any](t, body)
	if cfg["model"] != config.DefaultModel || cfg["mock"] != true || cfg["storage"] != "memory" {
		t.Fatalf("unexpected config %s", body)
	}
	if cfg["ttl_ms"] != float64(600000) || cfg["port"] != float64(3000) {
		t.Fatalf("unexpected ttl/port %s", body)
	}
}

func TestLandingPage(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected landing page response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
