package fingerprint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbeddingClient_ComputeEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/image" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected 'file' form field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"dim":       4,
			"embedding": []float32{0.1, 0.2, 0.3, 0.4},
			"model":     "clip",
		})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	embedding, err := client.ComputeEmbedding(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0x01})
	if err != nil {
		t.Fatalf("ComputeEmbedding failed: %v", err)
	}

	if len(embedding) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(embedding))
	}
	if embedding[0] != 0.1 {
		t.Errorf("unexpected first component: %f", embedding[0])
	}
}

func TestEmbeddingClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	if _, err := client.ComputeEmbedding(context.Background(), []byte("img")); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestEmbeddingClient_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"dim": 0, "embedding": []float32{}})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	if _, err := client.ComputeEmbedding(context.Background(), []byte("img")); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestEmbeddingClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1}})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewEmbeddingClient(server.URL)
	if _, err := client.ComputeEmbedding(ctx, []byte("img")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"webp", []byte{0x52, 0x49, 0x46, 0x46, 0, 0, 0, 0, 0x57, 0x45, 0x42, 0x50}, "image/webp"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectMIMEType(tc.data); got != tc.expected {
				t.Errorf("detectMIMEType(%s) = %s; want %s", tc.name, got, tc.expected)
			}
		})
	}
}
