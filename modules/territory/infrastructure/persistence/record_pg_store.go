package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
)

// RecordPGStore runs rule predicates against the generic module_records
// table. Predicates arrive as composable squirrel expressions over the
// fields jsonb column.
type RecordPGStore struct {
	pool pgBeginner
}

func NewRecordPGStore(pool pgBeginner) ports.RecordStore {
	return &RecordPGStore{pool: pool}
}

func (s *RecordPGStore) FindIDsMatching(ctx context.Context, moduleName string, pred sq.Sqlizer) ([]string, error) {
	query, args, err := sq.Select("id").
		From("module_records").
		Where(sq.Eq{"module_name": moduleName}).
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids, err := collectStrings(rows)
	if err != nil {
		return nil, err
	}
	return ids, tx.Commit(ctx)
}

func (s *RecordPGStore) CountMatching(ctx context.Context, moduleName string, pred sq.Sqlizer) (int64, error) {
	query, args, err := sq.Select("count(*)").
		From("module_records").
		Where(sq.Eq{"module_name": moduleName}).
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}
