// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/scholarcast/pkg/types"
)

// ValidationError is returned when the query is rejected before any work
// begins. No partial state exists when it is raised.
type ValidationError struct {
	Verdict types.Verdict
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query rejected: %s", e.Verdict.Reason)
}

// StageError is one external-call failure inside a paper's pipeline. In
// lenient mode it is recovered by the stage's fallback and never surfaces;
// in strict mode it propagates and fails the paper.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PaperError is one paper's pipeline aborting. The orchestrator catches
// it, logs the paper identity, and excludes the paper from results without
// failing the batch.
type PaperError struct {
	PaperID string
	Title   string
	Err     error
}

func (e *PaperError) Error() string {
	return fmt.Sprintf("paper %s (%q): %v", e.PaperID, e.Title, e.Err)
}

func (e *PaperError) Unwrap() error { return e.Err }

// BatchError is the terminal failure of one run: either the fetch produced
// nothing usable or every paper failed.
type BatchError struct {
	Attempted int
	Failures  []*PaperError
	Reason    string
}

func (e *BatchError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("all %d papers failed", e.Attempted)
}
