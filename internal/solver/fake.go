package solver

import (
	"context"
	"sync"

	"progcheck/internal/smt"
)

// Fake returns a fixed answer and records every script it receives. When
// Block is set, Solve waits for it to be closed or for ctx to end.
type Fake struct {
	Result Result
	Err    error
	Block  chan struct{}

	mu    sync.Mutex
	calls []*smt.Script
}

func (f *Fake) Solve(ctx context.Context, script *smt.Script) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, script)
	f.mu.Unlock()

	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return Result{}, &Error{Solver: "fake", Reason: "canceled", Err: ctx.Err()}
		}
	}
	return f.Result, f.Err
}

// Calls returns the scripts received so far.
func (f *Fake) Calls() []*smt.Script {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*smt.Script(nil), f.calls...)
}
