package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/detect"
	"github.com/kozaktomas/photo-curator/internal/library"
)

// newTestLibrary builds a library from category -> filename -> content
func newTestLibrary(t *testing.T, categories map[string]map[string][]byte) *library.Library {
	t.Helper()
	base := t.TempDir()
	for category, files := range categories {
		dir := filepath.Join(base, category)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", category, err)
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
				t.Fatalf("write %s/%s: %v", category, name, err)
			}
		}
	}
	lib, err := library.New(base)
	if err != nil {
		t.Fatalf("library.New: %v", err)
	}
	return lib
}

// newTestService wires a detection service with an optional fake extractor
func newTestService(t *testing.T, lib *library.Library, extractor detect.FeatureExtractor) *detect.Service {
	t.Helper()
	return detect.NewService(lib, extractor, nil, config.Load().Params)
}

// fakeExtractor returns canned vectors keyed by file content
type fakeExtractor struct {
	vectors map[string][]float32
}

func (f *fakeExtractor) ComputeEmbedding(_ context.Context, data []byte) ([]float32, error) {
	v, ok := f.vectors[string(data)]
	if !ok {
		return nil, errors.New("no vector for input")
	}
	return v, nil
}

// testJPEG encodes a small gradient image with optional trailing padding
func testJPEG(t *testing.T, reversed bool, padding int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if reversed {
				v = uint8(255 - x*4)
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	buf.Write(make([]byte, padding))
	return buf.Bytes()
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
