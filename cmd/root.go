package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-curator",
	Short: "Curate photo collections by finding duplicates, lookalikes and outliers",
	Long: `Photo Curator analyzes a directory tree of categorized photos and finds
near-identical duplicates, clusters of visually similar shots and images
that do not fit their category. Review happens through a web API with a
staged deletion queue, so nothing is removed without confirmation.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
