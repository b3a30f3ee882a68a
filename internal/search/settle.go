package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrTaskPanicked marks a settled task that panicked instead of returning.
var ErrTaskPanicked = errors.New("task panicked")

// Settled is the independent result of one task passed to Settle.
type Settled[T any] struct {
	Value T
	Err   error
}

// Settle runs every task concurrently and waits for all of them. A failing or
// panicking task never cancels the others and never fails the join; outcomes
// are returned in task order.
func Settle[T any](ctx context.Context, tasks ...func(context.Context) (T, error)) []Settled[T] {
	outcomes := make([]Settled[T], len(tasks))

	var group errgroup.Group
	for idx, task := range tasks {
		group.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[idx] = Settled[T]{Err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}
				}
			}()

			value, err := task(ctx)
			outcomes[idx] = Settled[T]{Value: value, Err: err}

			return nil
		})
	}
	_ = group.Wait()

	return outcomes
}
