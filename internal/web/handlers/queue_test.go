package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/photo-curator/internal/deletion"
)

func newQueueFixture(t *testing.T) (*QueueHandler, *deletion.Queue) {
	t.Helper()
	lib := newTestLibrary(t, map[string]map[string][]byte{
		"sparrows": {
			"a.jpg": make([]byte, 100),
			"b.jpg": make([]byte, 200),
		},
	})
	queue := deletion.NewQueue(lib, nil)
	return NewQueueHandler(queue), queue
}

func TestQueueAdd(t *testing.T) {
	handler, queue := newQueueFixture(t)

	body := `{"files": [
		{"category": "sparrows", "filename": "a.jpg", "reason": "duplicate"},
		{"category": "sparrows", "filename": "b.jpg", "reason": "outlier"}
	]}`
	req := httptest.NewRequest("POST", "/api/v1/queue", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result AddResponse
	parseJSONResponse(t, recorder, &result)
	if result.Added != 2 || result.Queued != 2 {
		t.Errorf("expected 2 added, 2 queued; got %d, %d", result.Added, result.Queued)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if queue.Len() != 2 {
		t.Errorf("expected 2 queued entries, got %d", queue.Len())
	}
}

func TestQueueAddCollectsPerFileErrors(t *testing.T) {
	handler, queue := newQueueFixture(t)

	body := `{"files": [
		{"category": "sparrows", "filename": "a.jpg", "reason": "duplicate"},
		{"category": "sparrows", "filename": "missing.jpg", "reason": "duplicate"},
		{"category": "sparrows", "filename": "b.jpg", "reason": "nonsense"}
	]}`
	req := httptest.NewRequest("POST", "/api/v1/queue", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result AddResponse
	parseJSONResponse(t, recorder, &result)
	if result.Added != 1 {
		t.Errorf("expected 1 added, got %d", result.Added)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", result.Errors)
	}
	if queue.Len() != 1 {
		t.Errorf("expected 1 queued entry, got %d", queue.Len())
	}
}

func TestQueueAddInvalidBody(t *testing.T) {
	handler, _ := newQueueFixture(t)

	req := httptest.NewRequest("POST", "/api/v1/queue", strings.NewReader("not json"))
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestQueueAddEmptyList(t *testing.T) {
	handler, _ := newQueueFixture(t)

	req := httptest.NewRequest("POST", "/api/v1/queue", strings.NewReader(`{"files": []}`))
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestQueueGet(t *testing.T) {
	handler, queue := newQueueFixture(t)
	queue.Add("sparrows", "a.jpg", deletion.ReasonDuplicate)

	req := httptest.NewRequest("GET", "/api/v1/queue", nil)
	recorder := httptest.NewRecorder()

	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result deletion.Snapshot
	parseJSONResponse(t, recorder, &result)
	if result.Count != 1 || result.TotalSize != 100 {
		t.Errorf("expected 1 entry of 100 bytes, got %+v", result)
	}
}

func TestQueueRemove(t *testing.T) {
	handler, queue := newQueueFixture(t)
	queue.Add("sparrows", "a.jpg", deletion.ReasonManual)

	req := httptest.NewRequest("DELETE", "/api/v1/queue/item?path=sparrows/a.jpg", nil)
	recorder := httptest.NewRecorder()

	handler.Remove(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if queue.Len() != 0 {
		t.Errorf("expected empty queue, got %d entries", queue.Len())
	}
}

func TestQueueRemoveNotQueued(t *testing.T) {
	handler, _ := newQueueFixture(t)

	req := httptest.NewRequest("DELETE", "/api/v1/queue/item?path=sparrows/a.jpg", nil)
	recorder := httptest.NewRecorder()

	handler.Remove(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestQueueRemoveMissingPath(t *testing.T) {
	handler, _ := newQueueFixture(t)

	req := httptest.NewRequest("DELETE", "/api/v1/queue/item", nil)
	recorder := httptest.NewRecorder()

	handler.Remove(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestQueueClear(t *testing.T) {
	handler, queue := newQueueFixture(t)
	queue.Add("sparrows", "a.jpg", deletion.ReasonManual)
	queue.Add("sparrows", "b.jpg", deletion.ReasonManual)

	req := httptest.NewRequest("DELETE", "/api/v1/queue", nil)
	recorder := httptest.NewRecorder()

	handler.Clear(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]int
	parseJSONResponse(t, recorder, &result)
	if result["cleared"] != 2 {
		t.Errorf("expected 2 cleared, got %d", result["cleared"])
	}
	if queue.Len() != 0 {
		t.Errorf("expected empty queue, got %d entries", queue.Len())
	}
}

func TestQueuePreview(t *testing.T) {
	handler, queue := newQueueFixture(t)
	queue.Add("sparrows", "a.jpg", deletion.ReasonDuplicate)

	req := httptest.NewRequest("GET", "/api/v1/queue/preview", nil)
	recorder := httptest.NewRecorder()

	handler.Preview(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result deletion.Preview
	parseJSONResponse(t, recorder, &result)
	if result.Count != 1 || result.ByReason["duplicate"] != 1 {
		t.Errorf("expected preview of 1 duplicate, got %+v", result)
	}
	// One warning announcing the affected category.
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestQueueConfirm(t *testing.T) {
	handler, queue := newQueueFixture(t)
	queue.Add("sparrows", "a.jpg", deletion.ReasonDuplicate)
	queue.Add("sparrows", "b.jpg", deletion.ReasonDuplicate)

	req := httptest.NewRequest("POST", "/api/v1/queue/confirm", nil)
	recorder := httptest.NewRecorder()

	handler.Confirm(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result deletion.ConfirmResult
	parseJSONResponse(t, recorder, &result)
	if !result.Success || result.DeletedCount != 2 {
		t.Errorf("expected 2 successful deletions, got %+v", result)
	}
	if result.BatchID == "" {
		t.Error("expected a batch id")
	}
	if queue.Len() != 0 {
		t.Errorf("expected empty queue after confirm, got %d entries", queue.Len())
	}
}
