package stats

import (
	"context"

	"emailstats/internal/window"
)

// Repository stores one Record per cycle. Put overwrites an existing record
// with the same (Day, Timestamp). Query returns records of w.Day whose
// timestamp lies in [w.Start, w.End], oldest first.
type Repository interface {
	Put(ctx context.Context, rec Record) error
	Query(ctx context.Context, w window.Window) ([]Record, error)
}
