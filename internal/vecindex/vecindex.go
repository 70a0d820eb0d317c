// Package vecindex provides a precomputed nearest-neighbor index over image
// embeddings, loaded from a directory produced by the index build step. Once
// loaded the index is read-only and safe for concurrent queries.
package vecindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/photo-curator/internal/fingerprint"
	"github.com/kozaktomas/photo-curator/internal/library"
)

const (
	vectorsFile     = "vectors.gob"
	metaFile        = "index.meta"
	metadataVersion = 1

	// maxNeighbors is the HNSW M parameter.
	maxNeighbors = 16
)

// Vector is a stored embedding for one image.
type Vector struct {
	Category  string
	Filename  string
	Embedding []float32
}

// Neighbor is a single nearest-neighbor search result.
type Neighbor struct {
	Filename   string
	Similarity float64
}

// Metadata validates a stored index directory.
type Metadata struct {
	VectorCount int       `json:"vector_count"`
	Dim         int       `json:"dim"`
	BuiltAt     time.Time `json:"built_at"`
	Version     int       `json:"version"`
}

// category groups the vectors and the search graph of one category.
type category struct {
	name    string
	vectors []Vector
	graph   *hnsw.Graph[int]
}

// Index holds per-category HNSW graphs over precomputed embeddings.
// Category lookups are normalized, so directory names and index metadata may
// disagree on case, diacritics or underscores.
type Index struct {
	dir        string
	categories map[string]*category // keyed by normalized category name
	count      int
	dim        int
}

// Build creates an in-memory index from a set of vectors.
func Build(vectors []Vector) *Index {
	idx := &Index{categories: make(map[string]*category)}

	for _, v := range vectors {
		if len(v.Embedding) == 0 {
			continue
		}
		key := library.NormalizeCategory(v.Category)
		cat, ok := idx.categories[key]
		if !ok {
			cat = &category{name: v.Category}
			idx.categories[key] = cat
		}
		cat.vectors = append(cat.vectors, v)
		idx.count++
		if idx.dim == 0 {
			idx.dim = len(v.Embedding)
		}
	}

	for _, cat := range idx.categories {
		g := hnsw.NewGraph[int]()
		g.M = maxNeighbors
		g.Ml = 1.0 / float64(maxNeighbors) // Standard HNSW formula
		g.Distance = hnsw.CosineDistance
		for i := range cat.vectors {
			g.Add(hnsw.MakeNode(i, cat.vectors[i].Embedding))
		}
		cat.graph = g
	}

	return idx
}

// Load reads an index directory written by Save and builds the search graphs.
func Load(dir string) (*Index, error) {
	metaData, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("reading index metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("parsing index metadata: %w", err)
	}
	if meta.Version != metadataVersion {
		return nil, fmt.Errorf("unsupported index version %d", meta.Version)
	}

	f, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	defer f.Close()

	var vectors []Vector
	if err := gob.NewDecoder(f).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding vector store: %w", err)
	}

	if len(vectors) != meta.VectorCount {
		return nil, fmt.Errorf("vector store has %d vectors, metadata says %d", len(vectors), meta.VectorCount)
	}

	idx := Build(vectors)
	idx.dir = dir
	return idx, nil
}

// Save writes the index vectors and metadata to a directory.
func (idx *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}

	var vectors []Vector
	for _, key := range idx.sortedKeys() {
		vectors = append(vectors, idx.categories[key].vectors...)
	}

	f, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(vectors); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding vector store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing vector store: %w", err)
	}

	meta := Metadata{
		VectorCount: idx.count,
		Dim:         idx.dim,
		BuiltAt:     time.Now(),
		Version:     metadataVersion,
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), metaData, 0o600); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}

	return nil
}

// Loaded reports whether the index holds any vectors.
func (idx *Index) Loaded() bool {
	return idx != nil && idx.count > 0
}

// Count returns the total number of indexed vectors.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	return idx.count
}

// Dim returns the embedding dimension.
func (idx *Index) Dim() int {
	return idx.dim
}

// Location returns the directory the index was loaded from, if any.
func (idx *Index) Location() string {
	return idx.dir
}

// Categories returns the display names of all indexed categories, sorted.
func (idx *Index) Categories() []string {
	names := make([]string, 0, len(idx.categories))
	for _, cat := range idx.categories {
		names = append(names, cat.name)
	}
	sort.Strings(names)
	return names
}

// HasCategory reports whether the index holds vectors for a category.
func (idx *Index) HasCategory(name string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.categories[library.NormalizeCategory(name)]
	return ok
}

// Vectors returns the stored vectors of a category, nil when unknown.
func (idx *Index) Vectors(name string) []Vector {
	if idx == nil {
		return nil
	}
	cat, ok := idx.categories[library.NormalizeCategory(name)]
	if !ok {
		return nil
	}
	return cat.vectors
}

// Search finds up to k nearest neighbors of the query vector within a single
// category, most similar first.
func (idx *Index) Search(name string, query []float32, k int) []Neighbor {
	if idx == nil {
		return nil
	}
	cat, ok := idx.categories[library.NormalizeCategory(name)]
	if !ok || cat.graph == nil {
		return nil
	}

	nodes := cat.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		if n.Key < 0 || n.Key >= len(cat.vectors) {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Filename:   cat.vectors[n.Key].Filename,
			Similarity: fingerprint.CosineSimilarity(query, n.Value),
		})
	}
	return neighbors
}

func (idx *Index) sortedKeys() []string {
	keys := make([]string, 0, len(idx.categories))
	for key := range idx.categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
