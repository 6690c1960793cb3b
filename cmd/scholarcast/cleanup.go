// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholarcast/internal/audio"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired audio files",
	Long: `Cleanup sweeps the audio storage directory, deleting files whose
modification time is older than the configured horizon (default 24h) and
pruning directories the deletions leave empty. Reports have no automatic
expiry; only their audio files are subject to the sweep.`,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	horizon := cfg.Audio.CleanupHorizon
	if flagHorizon, _ := cmd.Flags().GetDuration("horizon"); flagHorizon > 0 {
		horizon = flagHorizon
	}

	removed, err := audio.Cleanup(cfg.Audio.StorageDir, horizon, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired audio file(s)\n", removed)
	return nil
}

func init() {
	cleanupCmd.Flags().Duration("horizon", 0, "override the expiry horizon (e.g. 48h; 0 = configured default)")

	rootCmd.AddCommand(cleanupCmd)
}
