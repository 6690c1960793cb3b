// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholarcast/internal/similarity"
)

var similarCmd = &cobra.Command{
	Use:   "similar [paper-id]",
	Short: "Find cached papers similar to a given one",
	Long: `Similar rebuilds the in-memory similarity index from the local paper
cache and returns the nearest neighbors of the given paper by cosine
similarity over summary embeddings.

Papers whose embeddings are placeholder vectors (produced by the offline
fallback) match on structure, not meaning; their scores should not be
over-read.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	paperID := args[0]
	k, _ := cmd.Flags().GetInt("k")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.LoadAll(context.Background())
	if err != nil {
		return err
	}

	index := similarity.New()
	titles := make(map[string]string, len(papers))
	for _, p := range papers {
		if len(p.Embedding.Vector) == 0 {
			continue
		}
		index.Upsert(p.ID, p.Embedding.Vector)
		titles[p.ID] = p.Title
	}

	vec, ok := index.Vector(paperID)
	if !ok {
		return fmt.Errorf("paper %s is not cached or has no embedding", paperID)
	}

	matches, err := index.Query(vec, k+1)
	if err != nil {
		return err
	}

	shown := 0
	for _, m := range matches {
		if m.PaperID == paperID || shown >= k {
			continue
		}
		fmt.Printf("%.4f  %-42s  %s\n", m.Similarity, m.PaperID, titles[m.PaperID])
		shown++
	}
	if shown == 0 {
		fmt.Println("No similar papers found.")
	}
	return nil
}

func init() {
	similarCmd.Flags().Int("k", 5, "number of similar papers to return")

	rootCmd.AddCommand(similarCmd)
}
