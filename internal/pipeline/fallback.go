// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
)

// runStage invokes primary and, in lenient mode, degrades to fallback when
// it fails. The fallback is expected to be a local, dependency-free
// substitute that does not fail; if it does anyway, the paper fails. In
// strict mode the primary error propagates directly as a StageError.
func runStage[T any](
	ctx context.Context,
	stage string,
	useFallbacks bool,
	w io.Writer,
	primary func(context.Context) (T, error),
	fallback func(context.Context) (T, error),
) (T, error) {
	out, err := primary(ctx)
	if err == nil {
		return out, nil
	}

	if !useFallbacks || fallback == nil {
		var zero T
		return zero, &StageError{Stage: stage, Err: err}
	}

	fmt.Fprintf(w, "warning: stage %s failed, using fallback: %v\n", stage, err)

	out, err = fallback(ctx)
	if err != nil {
		var zero T
		return zero, &StageError{Stage: stage, Err: fmt.Errorf("fallback also failed: %w", err)}
	}
	return out, nil
}
