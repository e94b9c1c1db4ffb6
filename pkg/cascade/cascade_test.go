package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txStub struct {
	pgx.Tx
	execFn     func(sql string, args []any) (pgconn.CommandTag, error)
	executed   []string
	committed  bool
	rolledBack bool
}

func (t *txStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.executed = append(t.executed, sql)
	if t.execFn == nil {
		return pgconn.CommandTag{}, errors.New("Exec not stubbed")
	}
	return t.execFn(sql, args)
}

func (t *txStub) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *txStub) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type beginnerStub struct {
	tx       *txStub
	beginErr error
	beginCtx context.Context
}

func (b *beginnerStub) Begin(ctx context.Context) (pgx.Tx, error) {
	b.beginCtx = ctx
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestRunAccumulatesCountsByStepName(t *testing.T) {
	tx := &txStub{execFn: func(sql string, _ []any) (pgconn.CommandTag, error) {
		if sql == "update a" {
			return pgconn.NewCommandTag("UPDATE 3"), nil
		}
		return pgconn.NewCommandTag("UPDATE 2"), nil
	}}
	runner := NewRunner(&beginnerStub{tx: tx})

	counts, err := runner.Run(context.Background(), []Step{
		{Name: "first", SQL: "update a"},
		{Name: "second", SQL: "update b"},
		{Name: "second", SQL: "update c"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if counts["first"] != 3 || counts["second"] != 4 {
		t.Fatalf("counts = %v", counts)
	}
	if !tx.committed {
		t.Fatal("expected commit")
	}
}

func TestRunFailingStepAbortsWithoutCommit(t *testing.T) {
	errBoom := errors.New("boom")
	tx := &txStub{execFn: func(sql string, _ []any) (pgconn.CommandTag, error) {
		if sql == "update b" {
			return pgconn.CommandTag{}, errBoom
		}
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}}
	runner := NewRunner(&beginnerStub{tx: tx})

	counts, err := runner.Run(context.Background(), []Step{
		{Name: "first", SQL: "update a"},
		{Name: "second", SQL: "update b"},
		{Name: "third", SQL: "update c"},
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if counts != nil {
		t.Fatalf("expected nil counts, got %v", counts)
	}
	if tx.committed {
		t.Fatal("commit after a failing step")
	}
	if !tx.rolledBack {
		t.Fatal("expected rollback")
	}
	if len(tx.executed) != 2 {
		t.Fatalf("steps after the failure ran: %v", tx.executed)
	}
}

func TestRunNamesFailingStep(t *testing.T) {
	tx := &txStub{execFn: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("boom")
	}}
	runner := NewRunner(&beginnerStub{tx: tx})

	_, err := runner.Run(context.Background(), []Step{{Name: "users", SQL: "update a"}})
	if err == nil || err.Error() != "cascade step users: boom" {
		t.Fatalf("err = %v", err)
	}
}

func TestRunAppliesDefaultTimeout(t *testing.T) {
	tx := &txStub{execFn: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}}
	beginner := &beginnerStub{tx: tx}
	runner := NewRunner(beginner)

	if _, err := runner.Run(context.Background(), []Step{{Name: "one", SQL: "update a"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := beginner.beginCtx.Deadline(); !ok {
		t.Fatal("expected a deadline on the transaction context")
	}
}

func TestRunBeginFailure(t *testing.T) {
	errDown := errors.New("down")
	runner := NewRunner(&beginnerStub{beginErr: errDown})

	if _, err := runner.Run(context.Background(), []Step{{Name: "one", SQL: "update a"}}); !errors.Is(err, errDown) {
		t.Fatalf("expected begin error, got %v", err)
	}
}
