// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholarcast/internal/store"
	"github.com/pdiddy/scholarcast/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Inspect the local paper cache",
	Long: `Papers manages the local SQLite cache of processed papers. Use
subcommands to list cached papers, search their titles, abstracts, and
summaries with full-text search, show aggregate statistics, or remove
entries.`,
}

func openStore() (*store.Store, error) {
	cfg := pipelineConfig()
	return store.NewStore(cfg.Store)
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached papers, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		papers, err := s.LoadAll(context.Background())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return printPapers(papers, jsonOutput)
	},
}

// --- search subcommand ---

var papersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over cached papers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		papers, err := s.SearchCached(context.Background(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return printPapers(papers, jsonOutput)
	},
}

// --- stats subcommand ---

var papersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Cached papers:   %d\n", st.PaperCount)
		fmt.Printf("Avg importance:  %.1f\n", st.AvgImportance)
		fmt.Printf("Fallback audio:  %d\n", st.FallbackAudio)
		if len(st.BySource) > 0 {
			fmt.Println("By source:")
			for source, n := range st.BySource {
				fmt.Printf("  %-18s %d\n", source, n)
			}
		}
		if len(st.TopVenues) > 0 {
			fmt.Printf("Top venues:      %s\n", strings.Join(st.TopVenues, ", "))
		}
		return nil
	},
}

// --- export subcommand ---

var papersExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the cache to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "yaml", "":
			err = s.ExportYAML(context.Background(), args[0])
		case "json":
			err = s.ExportJSON(context.Background(), args[0])
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

// --- delete subcommand ---

var papersDeleteCmd = &cobra.Command{
	Use:   "delete [paper-id]",
	Short: "Remove a paper from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func printPapers(papers []types.ProcessedPaper, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers cached.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-42s  %-40s  %-16s  %s\n", "ID", "Title", "Source", "Importance")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, p := range papers {
		title := p.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-42s  %-40s  %-16s  %d/10\n", p.ID, title, p.Source, p.Summary.Importance)
	}
	fmt.Fprintf(os.Stdout, "\n%d papers\n", len(papers))
	return nil
}

func init() {
	papersListCmd.Flags().Bool("json", false, "output papers as JSON")
	papersSearchCmd.Flags().Bool("json", false, "output papers as JSON")
	papersSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	papersExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersSearchCmd)
	papersCmd.AddCommand(papersStatsCmd)
	papersCmd.AddCommand(papersExportCmd)
	papersCmd.AddCommand(papersDeleteCmd)

	rootCmd.AddCommand(papersCmd)
}
