// Package cascade executes ordered multi-table write steps inside a single
// transaction. A cascade either commits every step or none of them, which is
// what keeps denormalized name references consistent across tables.
package cascade

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Step is one named write in a cascade. Steps are plain SQL so services can
// build a cascade as data and hand it over by value.
type Step struct {
	Name string
	SQL  string
	Args []any
}

// Counts maps a step name to the number of rows it modified. Steps sharing a
// name accumulate into one entry.
type Counts map[string]int64

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Runner struct {
	pool    pgBeginner
	timeout time.Duration
}

const defaultTimeout = 30 * time.Second

func NewRunner(pool pgBeginner) *Runner {
	return &Runner{pool: pool, timeout: defaultTimeout}
}

// Run executes every step in order inside one transaction. The first failing
// step aborts the transaction; a timeout counts as a failure. Write conflicts
// are surfaced, not retried: replaying a name propagation could double-apply.
func (r *Runner) Run(ctx context.Context, steps []Step) (Counts, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	counts := make(Counts, len(steps))
	for _, step := range steps {
		tag, err := tx.Exec(ctx, step.SQL, step.Args...)
		if err != nil {
			return nil, fmt.Errorf("cascade step %s: %w", step.Name, err)
		}
		counts[step.Name] += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return counts, nil
}
