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
	"github.com/pdiddy/scholarcast/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run the full research pipeline for a query",
	Long: `Search validates the query, fetches candidate papers from academic APIs
(arXiv, Semantic Scholar), and runs each paper through extraction,
summarization, embedding, and audio synthesis. Results are cached locally.

Papers that fail are skipped; the run only fails when nothing survives.
Use --strict to disable fallbacks so stage failures exclude papers instead
of degrading to local substitutes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	withReport, _ := cmd.Flags().GetBool("report")
	strict, _ := cmd.Flags().GetBool("strict")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig()
	if strict {
		cfg.UseFallbacks = false
	}

	engine, closeStore, err := pipeline.New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := engine.RunSearch(context.Background(), query, pipeline.SearchOptions{
		MaxResults:     maxResults,
		GenerateReport: withReport,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSearchResult(result)
	return nil
}

func printSearchResult(result types.SearchResult) {
	fmt.Printf("Processed %d/%d papers for %q\n\n", result.Succeeded, result.Attempted, result.Query)

	for i, p := range result.Papers {
		fmt.Printf("%d. %s\n", i+1, p.Title)
		if len(p.Authors) > 0 {
			fmt.Printf("   Authors: %s\n", strings.Join(p.Authors, ", "))
		}
		if p.Venue != "" {
			fmt.Printf("   Venue: %s (%s)\n", p.Venue, p.PublishedDate)
		}
		fmt.Printf("   Summary: %s\n", p.Summary.Text)
		for _, b := range p.Summary.Bullets {
			fmt.Printf("   - %s\n", b)
		}
		fmt.Printf("   Importance: %d/10  Audio: %s (%s)\n",
			p.Summary.Importance, p.Audio.URL, audio.FormatDuration(p.Audio.DurationSeconds))
		if p.Summary.Provenance == "fallback" {
			fmt.Printf("   (summary produced by local fallback)\n")
		}
		fmt.Println()
	}

	if result.Report != nil {
		fmt.Printf("Report %s: %s\n", result.Report.ID, result.Report.Title)
		fmt.Printf("  Audio: %s (%s)\n", result.Report.Audio.URL,
			audio.FormatDuration(result.Report.Audio.DurationSeconds))
	}
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum papers to process (0 = configured default)")
	searchCmd.Flags().Bool("report", false, "assemble an aggregate narrated report over all papers")
	searchCmd.Flags().Bool("strict", false, "disable fallbacks: stage failures exclude papers")
	searchCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(searchCmd)
}
