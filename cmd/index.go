package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/fingerprint"
	"github.com/kozaktomas/photo-curator/internal/library"
	"github.com/kozaktomas/photo-curator/internal/vecindex"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the photo library",
	Long: `Compute an embedding for every image in the library through the embedding
server and write a vector index to disk. The serve and analyze commands use
the index to avoid re-extracting embeddings for every request.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("out", "", "Index output directory (defaults to VECTOR_INDEX_DIR)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Embedding.URL == "" {
		return fmt.Errorf("EMBEDDING_URL environment variable is required to build the index")
	}
	outDir := mustGetString(cmd, "out")
	if outDir == "" {
		outDir = cfg.Index.Dir
	}
	if outDir == "" {
		return fmt.Errorf("no output directory: pass --out or set VECTOR_INDEX_DIR")
	}

	lib, err := library.New(cfg.Library.BaseDir)
	if err != nil {
		return fmt.Errorf("opening photo library: %w", err)
	}
	client := fingerprint.NewEmbeddingClient(cfg.Embedding.URL)

	categories, err := lib.Categories()
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	var total int
	files := make(map[string][]library.ImageFile, len(categories))
	for _, category := range categories {
		list, err := lib.List(category)
		if err != nil {
			return fmt.Errorf("listing %s: %w", category, err)
		}
		files[category] = list
		total += len(list)
	}
	if total == 0 {
		return fmt.Errorf("no images found in %s", lib.BaseDir())
	}

	fmt.Printf("Indexing %d images across %d categories\n", total, len(categories))
	bar := progressbar.Default(int64(total), "embedding")

	ctx := context.Background()
	var vectors []vecindex.Vector
	var failed int
	for _, category := range categories {
		for _, f := range files[category] {
			_ = bar.Add(1)
			data, err := lib.ReadFile(category, f.Name)
			if err != nil {
				failed++
				continue
			}
			embedding, err := client.ComputeEmbedding(ctx, data)
			if err != nil {
				failed++
				continue
			}
			vectors = append(vectors, vecindex.Vector{
				Category:  category,
				Filename:  f.Name,
				Embedding: embedding,
			})
		}
	}
	_ = bar.Finish()

	if len(vectors) == 0 {
		return fmt.Errorf("no embeddings could be computed (%d failures)", failed)
	}

	idx := vecindex.Build(vectors)
	if err := idx.Save(outDir); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	fmt.Printf("Index written to %s: %d vectors, dimension %d\n", outDir, idx.Count(), idx.Dim())
	if failed > 0 {
		fmt.Printf("Warning: %d images could not be embedded\n", failed)
	}
	return nil
}
