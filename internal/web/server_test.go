package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/deletion"
	"github.com/kozaktomas/photo-curator/internal/detect"
	"github.com/kozaktomas/photo-curator/internal/library"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "sparrows"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lib, err := library.New(base)
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}
	cfg := config.Load()
	svc := detect.NewService(lib, nil, nil, cfg.Params)
	queue := deletion.NewQueue(lib, svc.InvalidateCategory)
	return NewServer(cfg, 8080, "127.0.0.1", lib, svc, queue)
}

func TestRouterServesHealth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("health status = %d; want %d", recorder.Code, http.StatusOK)
	}
}

func TestRouterWiresAPIEndpoints(t *testing.T) {
	server := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/status"},
		{"GET", "/api/v1/params"},
		{"GET", "/api/v1/categories"},
		{"GET", "/api/v1/queue"},
		{"GET", "/api/v1/queue/preview"},
		{"POST", "/api/v1/queue/confirm"},
		{"DELETE", "/api/v1/cache"},
	}
	for _, tt := range paths {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		recorder := httptest.NewRecorder()
		server.Router().ServeHTTP(recorder, req)

		if recorder.Code == http.StatusNotFound || recorder.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s is not routed (status %d)", tt.method, tt.path, recorder.Code)
		}
	}
}

func TestRouterServesIndexPage(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("index status = %d; want %d", recorder.Code, http.StatusOK)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("index Content-Type = %q", ct)
	}
}

func TestRouterUnknownAPIPath(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/nonsense", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d; want %d", recorder.Code, http.StatusNotFound)
	}
}
