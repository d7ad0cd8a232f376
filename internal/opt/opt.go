// Package opt defines the shared surface of the metaheuristic solvers:
// the run result, the timestamped cost history, and the Solver contract
// both engines satisfy.
package opt

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRun is returned when Solve is invoked twice on the same engine.
// Engines are single-use; build a fresh one for a new run.
var ErrAlreadyRun = errors.New("opt: solver already run")

// Sample is one history entry: milliseconds since the run started and the
// best cost known at that moment.
type Sample struct {
	ElapsedMs float64 `json:"t"`
	BestCost  float64 `json:"cost"`
}

// History is the ordered sequence of improving best-cost samples appended
// once per generation/iteration. BestCost is non-increasing by construction.
type History []Sample

// Best returns the lowest cost in the history, or +Inf semantics via ok=false
// when the history is empty.
func (h History) Best() (float64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[len(h)-1].BestCost, true
}

// Result is the outcome of a single engine run.
type Result struct {
	BestTour []int         `json:"bestTour"`
	BestCost float64       `json:"bestCost"`
	History  History       `json:"history"`
	Duration time.Duration `json:"-"`
}

// ProgressFunc receives each history sample as it is appended. It runs on the
// engine goroutine; implementations must be fast and must not block.
type ProgressFunc func(Sample)

// Solver runs one optimization to completion. Implementations are
// single-threaded and not restartable.
type Solver interface {
	Solve(ctx context.Context) (Result, error)
}
