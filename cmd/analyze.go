package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/detect"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [category]",
	Short: "Run all analyses over the library and print a JSON report",
	Long: `Run duplicate, similarity and outlier detection over every category of
the photo library (or a single category when given) and write the combined
results as a JSON report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int("hash-size", 0, "Perceptual hash size (0 uses the configured default)")
	analyzeCmd.Flags().Int("hamming-threshold", -1, "Max Hamming distance for duplicates (-1 uses the configured default)")
	analyzeCmd.Flags().Float64("threshold", 0, "Cosine similarity threshold (0 uses the configured default)")
	analyzeCmd.Flags().Float64("percentile", 0, "Outlier threshold percentile (0 uses the configured default)")
	analyzeCmd.Flags().String("output", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().Bool("pretty", true, "Indent the JSON report")
}

// analysisReport is the analyze command output.
type analysisReport struct {
	Library     string                  `json:"library"`
	GeneratedAt time.Time               `json:"generated_at"`
	Categories  []detect.CombinedResult `json:"categories"`
}

func analyzeParams(cmd *cobra.Command, svc *detect.Service) detect.CombinedParams {
	params := detect.CombinedParams{
		Duplicates: svc.DefaultDuplicateParams(),
		Similarity: svc.DefaultSimilarityParams(),
		Outliers:   svc.DefaultOutlierParams(),
	}
	if v := mustGetInt(cmd, "hash-size"); v != 0 {
		params.Duplicates.HashSize = v
	}
	if v := mustGetInt(cmd, "hamming-threshold"); v >= 0 {
		params.Duplicates.HammingThreshold = v
	}
	if v := mustGetFloat64(cmd, "threshold"); v != 0 {
		params.Similarity.Threshold = v
	}
	if v := mustGetFloat64(cmd, "percentile"); v != 0 {
		params.Outliers.Percentile = v
	}
	return params
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	lib, svc, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var categories []string
	if len(args) == 1 {
		categories = []string{args[0]}
	} else {
		categories, err = lib.Categories()
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories found in %s", lib.BaseDir())
	}

	params := analyzeParams(cmd, svc)
	report := analysisReport{
		Library:     lib.BaseDir(),
		GeneratedAt: time.Now(),
	}

	bar := progressbar.Default(int64(len(categories)), "analyzing")
	ctx := context.Background()
	for _, category := range categories {
		result, err := svc.Combined(ctx, category, params)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", category, err)
		}
		report.Categories = append(report.Categories, result)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	var data []byte
	if mustGetBool(cmd, "pretty") {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if output := mustGetString(cmd, "output"); output != "" {
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report written to %s\n", output)
		return nil
	}
	fmt.Println(string(data))
	return nil
}
