package service

import (
	"context"
	"errors"
)

// rollback records compensating actions for a multi-step write. Steps register
// their undo right after committing; on a later failure the undos run in
// reverse order. An undo failure is collected, not retried — the orphaned
// write must be observable as a distinct secondary error.
type rollback struct {
	undos []func(context.Context) error
}

func (r *rollback) add(undo func(context.Context) error) {
	r.undos = append(r.undos, undo)
}

func (r *rollback) run(ctx context.Context) error {
	var errs []error
	for i := len(r.undos) - 1; i >= 0; i-- {
		if err := r.undos[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
