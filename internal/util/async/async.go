package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel runs every task with at most limit in flight and waits for all
// of them. A limit below one means no bound. Failures of one task do not
// cancel the others; all failures are joined in task order.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "data-demo-workers-0", Func: deleteClaim("data-demo-workers-0")},
//	    {Name: "data-demo-workers-1", Func: deleteClaim("data-demo-workers-1")},
//	}
//	if err := RunParallel(ctx, 4, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, limit int, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	errs := make([]error, len(tasks))

	for i, task := range tasks {
		g.Go(func() error {
			if err := task.Func(ctx); err != nil {
				mu.Lock()
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
