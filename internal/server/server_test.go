package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mapcustomizer/mapcustomizer/pkg/cache"
	"github.com/mapcustomizer/mapcustomizer/pkg/config"
	"github.com/mapcustomizer/mapcustomizer/pkg/errors"
	"github.com/mapcustomizer/mapcustomizer/pkg/pipeline"
)

func writeBase(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	path := filepath.Join(dir, "map.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestServer serves a 40x30 white map with the built-in font and no
// marker icon. The configured records files do not exist.
func newTestServer(t *testing.T, c cache.Cache, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.BaseImage = writeBase(t, dir)
	cfg.Labels.Records = filepath.Join(dir, "districts.json")
	cfg.Labels.FontPath = ""
	cfg.Markers.Records = filepath.Join(dir, "cameras.json")
	cfg.Markers.FontPath = ""
	cfg.Markers.IconPath = ""
	if mutate != nil {
		mutate(cfg)
	}

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "test:"), logger)
	srv := httptest.NewServer(New(runner, cfg, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postRender(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/render: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["version"] == "" {
		t.Error("health response should report the version")
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", resp.Header.Get(RequestIDHeader), err)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestRenderReturnsPNG(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := postRender(t, srv, `{"labels": [], "markers": [{"name": "Cam", "x": 20, "y": 15, "speed": "50"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if failed := resp.Header.Get("X-Failed-Passes"); failed != "" {
		t.Errorf("X-Failed-Passes = %q, want none", failed)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("size = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
	r, g, _, _ := img.At(20, 15).RGBA()
	if r>>8 != 255 || g>>8 == 255 {
		t.Errorf("marker center = (%d, %d), want a red tint over white", r>>8, g>>8)
	}
}

func TestRenderRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"labels": [`},
		{"missing field", `{"labels": [{"x": 1, "y": 2}]}`},
		{"wrong type", `{"markers": [{"name": "Cam", "x": "left", "y": 2}]}`},
		{"not an array", `{"markers": {"name": "Cam"}}`},
	}

	srv := newTestServer(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRender(t, srv, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			e := decodeError(t, resp)
			if e.Code != string(errors.ErrCodeMalformedInput) {
				t.Errorf("code = %q, want %s", e.Code, errors.ErrCodeMalformedInput)
			}
			if e.RequestID == "" {
				t.Error("error body should carry the request id")
			}
		})
	}
}

func TestRenderOmittedSetUsesConfiguredFile(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	// The configured labels file is absent, so only the label pass fails.
	resp := postRender(t, srv, `{"markers": []}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Failed-Passes"); got != "labels" {
		t.Errorf("X-Failed-Passes = %q, want labels", got)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := postRender(t, srv, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Failed-Passes"); got != "markers,labels" {
		t.Errorf("X-Failed-Passes = %q, want markers,labels", got)
	}
}

func TestRenderMissingBase(t *testing.T) {
	srv := newTestServer(t, nil, func(c *config.Config) {
		c.BaseImage = filepath.Join(c.BaseImage, "..", "absent.png")
	})

	resp := postRender(t, srv, `{"labels": [], "markers": []}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != string(errors.ErrCodeIOFailure) {
		t.Errorf("code = %q, want %s", e.Code, errors.ErrCodeIOFailure)
	}
}

func TestRenderCachesArtifacts(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, fc, nil)
	body := `{"labels": [{"name": "Old Town", "x": 20, "y": 15}], "markers": []}`

	first := postRender(t, srv, body)
	second := postRender(t, srv, body)

	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	a, _ := io.ReadAll(first.Body)
	b, _ := io.ReadAll(second.Body)
	if string(a) != string(b) {
		t.Error("cached response differs from the rendered one")
	}
}

func TestRenderMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/v1/render")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeMalformedInput, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidConfig, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeResourceMissing, "gone"), http.StatusNotFound},
		{errors.New(errors.ErrCodeIOFailure, "disk"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", errors.New(errors.ErrCodeInvalidInput, "bad")), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
