// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholarcast/internal/audio"
	"github.com/pdiddy/scholarcast/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report [query]",
	Short: "Run the pipeline and produce one narrated report",
	Long: `Report runs the full search pipeline and then assembles a single
long-form narrated report over all surviving papers: a podcast-style
narrative synthesized into one audio file.

The narrative is composed by the summarization backend when an API key is
configured, falling back to a fixed template otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	engine, closeStore, err := pipeline.New(pipelineConfig(), os.Stderr)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := engine.RunSearch(context.Background(), query, pipeline.SearchOptions{
		MaxResults:     maxResults,
		GenerateReport: true,
	})
	if err != nil {
		return err
	}
	if result.Report == nil {
		return fmt.Errorf("pipeline succeeded but produced no report")
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Report)
	}

	rep := result.Report
	fmt.Printf("%s\n", rep.Title)
	fmt.Printf("Covers %d papers, assembled %s\n", rep.PaperCount, rep.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("Audio: %s (%s)\n\n", rep.Audio.URL, audio.FormatDuration(rep.Audio.DurationSeconds))
	fmt.Println(rep.Narrative)
	return nil
}

func init() {
	reportCmd.Flags().Int("max-results", 0, "maximum papers to cover (0 = configured default)")
	reportCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(reportCmd)
}
