// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// defaultCleanupHorizon is how long artifacts are kept before the sweep
// removes them.
const defaultCleanupHorizon = 24 * time.Hour

// Cleanup deletes audio files under storageDir whose modification time is
// older than horizon, then prunes directories the deletions left empty.
// A missing storage directory is not an error. Per-file failures are
// reported to w and do not stop the sweep. Returns the number of files
// removed.
func Cleanup(storageDir string, horizon time.Duration, w io.Writer) (int, error) {
	if horizon <= 0 {
		horizon = defaultCleanupHorizon
	}
	if storageDir == "" {
		storageDir = filepath.Join("tmp", "audio")
	}
	if _, err := os.Stat(storageDir); os.IsNotExist(err) {
		return 0, nil
	}

	cutoff := time.Now().Add(-horizon)
	removed := 0

	var dirs []string
	err := filepath.Walk(storageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != storageDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				fmt.Fprintf(w, "warning: removing %s: %v\n", path, err)
				return nil
			}
			fmt.Fprintf(w, "removed old audio file: %s\n", path)
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweeping audio directory: %w", err)
	}

	// Deepest directories first, so a parent emptied by a child's removal
	// is pruned in the same sweep.
	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dirs[i]); err == nil {
			fmt.Fprintf(w, "removed empty directory: %s\n", dirs[i])
		}
	}

	return removed, nil
}
