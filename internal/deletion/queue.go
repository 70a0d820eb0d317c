// Package deletion implements the staged deletion queue. Files are collected
// from review decisions first and removed from disk only on explicit
// confirmation.
package deletion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-curator/internal/library"
)

// Reason records why a file was queued for deletion.
type Reason string

const (
	ReasonDuplicate Reason = "duplicate"
	ReasonSimilar   Reason = "similar"
	ReasonOutlier   Reason = "outlier"
	ReasonManual    Reason = "manual"
)

// ParseReason validates a reason string, falling back to manual when empty.
func ParseReason(s string) (Reason, error) {
	switch Reason(s) {
	case ReasonDuplicate, ReasonSimilar, ReasonOutlier, ReasonManual:
		return Reason(s), nil
	case "":
		return ReasonManual, nil
	}
	return "", fmt.Errorf("unknown deletion reason: %q", s)
}

// QueuedFile is one entry of the deletion queue.
type QueuedFile struct {
	Category string    `json:"category"`
	Filename string    `json:"filename"`
	Path     string    `json:"path"` // category/filename
	Reason   Reason    `json:"reason"`
	Size     int64     `json:"size"`
	AddedAt  time.Time `json:"added_at"`
}

// Snapshot is the queue contents with aggregate statistics.
type Snapshot struct {
	Files          []QueuedFile   `json:"files"`
	Count          int            `json:"count"`
	TotalSize      int64          `json:"total_size"`
	TotalSizeHuman string         `json:"total_size_human"`
	ByCategory     map[string]int `json:"by_category"`
	ByReason       map[string]int `json:"by_reason"`
}

// Preview is what a confirmation would do right now.
type Preview struct {
	Files          []QueuedFile   `json:"files"`
	Count          int            `json:"count"`
	TotalSize      int64          `json:"total_size"`
	TotalSizeHuman string         `json:"total_size_human"`
	ByCategory     map[string]int `json:"by_category"`
	ByReason       map[string]int `json:"by_reason"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// FailedFile is a queue entry whose deletion failed.
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ConfirmResult reports the outcome of a confirmed deletion batch. Failed
// files remain queued so a later confirmation can retry them.
type ConfirmResult struct {
	BatchID            string       `json:"batch_id"`
	Success            bool         `json:"success"`
	DeletedCount       int          `json:"deleted_count"`
	DeletedFiles       []string     `json:"deleted_files"`
	FailedCount        int          `json:"failed_count"`
	FailedFiles        []FailedFile `json:"failed_files,omitempty"`
	FreedSize          int64        `json:"freed_size"`
	FreedSizeHuman     string       `json:"freed_size_human"`
	AffectedCategories []string     `json:"affected_categories"`
}

// Invalidator is notified once per category in which at least one file was
// deleted, so cached analysis results can be evicted.
type Invalidator func(category string)

// Queue is a staged deletion queue over a photo library. Entries are keyed by
// their library path, so a file can be queued at most once. Safe for
// concurrent use.
type Queue struct {
	lib        *library.Library
	invalidate Invalidator

	mu      sync.Mutex
	entries map[string]*QueuedFile
	order   []string // paths in insertion order
}

// NewQueue creates an empty queue. invalidate may be nil.
func NewQueue(lib *library.Library, invalidate Invalidator) *Queue {
	return &Queue{
		lib:        lib,
		invalidate: invalidate,
		entries:    make(map[string]*QueuedFile),
	}
}

// Add queues a file for deletion. Re-adding a queued file updates its reason
// but keeps the original timestamp; added reports whether the entry is new.
func (q *Queue) Add(category, filename string, reason Reason) (added bool, err error) {
	info, err := q.lib.Stat(category, filename)
	if err != nil {
		return false, err
	}

	path := category + "/" + filename

	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, ok := q.entries[path]; ok {
		entry.Reason = reason
		entry.Size = info.Size
		return false, nil
	}
	q.entries[path] = &QueuedFile{
		Category: category,
		Filename: filename,
		Path:     path,
		Reason:   reason,
		Size:     info.Size,
		AddedAt:  time.Now(),
	}
	q.order = append(q.order, path)
	return true, nil
}

// Remove drops a single entry by path and reports whether it was queued.
func (q *Queue) Remove(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[path]; !ok {
		return false
	}
	delete(q.entries, path)
	q.dropFromOrder(path)
	return true
}

// Clear empties the queue and returns the number of dropped entries.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := len(q.entries)
	q.entries = make(map[string]*QueuedFile)
	q.order = nil
	return count
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns the queue contents in insertion order with statistics.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := Snapshot{
		Files:      q.filesLocked(),
		Count:      len(q.entries),
		ByCategory: make(map[string]int),
		ByReason:   make(map[string]int),
	}
	for _, file := range snapshot.Files {
		snapshot.TotalSize += file.Size
		snapshot.ByCategory[file.Category]++
		snapshot.ByReason[string(file.Reason)]++
	}
	snapshot.TotalSizeHuman = humanSize(snapshot.TotalSize)
	return snapshot
}

// Preview describes what a confirmation would delete, with one warning per
// affected category and one per entry that no longer exists on disk.
func (q *Queue) Preview() Preview {
	q.mu.Lock()
	defer q.mu.Unlock()

	preview := Preview{
		Files:      q.filesLocked(),
		Count:      len(q.entries),
		ByCategory: make(map[string]int),
		ByReason:   make(map[string]int),
	}
	var missing []string
	for _, file := range preview.Files {
		preview.TotalSize += file.Size
		preview.ByCategory[file.Category]++
		preview.ByReason[string(file.Reason)]++
		if _, err := q.lib.Stat(file.Category, file.Filename); err != nil {
			missing = append(missing, fmt.Sprintf("%s: no longer accessible", file.Path))
		}
	}
	preview.TotalSizeHuman = humanSize(preview.TotalSize)

	for _, category := range sortedKeys(preview.ByCategory) {
		preview.Warnings = append(preview.Warnings,
			fmt.Sprintf("will permanently delete %d file(s) from category %q", preview.ByCategory[category], category))
	}
	preview.Warnings = append(preview.Warnings, missing...)
	return preview
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Confirm deletes every queued file from disk. Each file is attempted
// independently; failures stay queued for a later retry and do not stop the
// batch. Cancelling the context skips the files not yet attempted, recording
// them as failures, but the partial result is still returned and the
// invalidators still run for every category that lost a file. Success means
// every attempted deletion went through.
func (q *Queue) Confirm(ctx context.Context) (ConfirmResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := ConfirmResult{
		BatchID:      uuid.NewString(),
		DeletedFiles: []string{},
	}

	succeeded := make(map[string]bool) // categories with at least one deletion
	for _, path := range append([]string(nil), q.order...) {
		if err := ctx.Err(); err != nil {
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Path:  path,
				Error: err.Error(),
			})
			continue
		}
		entry := q.entries[path]
		if err := q.lib.Delete(entry.Category, entry.Filename); err != nil {
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Path:  path,
				Error: err.Error(),
			})
			continue
		}
		result.DeletedFiles = append(result.DeletedFiles, path)
		result.FreedSize += entry.Size
		succeeded[entry.Category] = true
		delete(q.entries, path)
		q.dropFromOrder(path)
	}

	result.DeletedCount = len(result.DeletedFiles)
	result.FailedCount = len(result.FailedFiles)
	result.Success = result.FailedCount == 0
	result.FreedSizeHuman = humanSize(result.FreedSize)
	for category := range succeeded {
		result.AffectedCategories = append(result.AffectedCategories, category)
	}
	sort.Strings(result.AffectedCategories)

	if q.invalidate != nil {
		for _, category := range result.AffectedCategories {
			q.invalidate(category)
		}
	}
	return result, nil
}

func (q *Queue) filesLocked() []QueuedFile {
	files := make([]QueuedFile, 0, len(q.order))
	for _, path := range q.order {
		files = append(files, *q.entries[path])
	}
	return files
}

func (q *Queue) dropFromOrder(path string) {
	for i, p := range q.order {
		if p == path {
			q.order = append(q.order[:i], q.order[i+1:]...)
			return
		}
	}
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
