package persistence

import (
	"context"

	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
)

// UserDirectoryPGStore answers role-membership queries against the
// authoritative users table.
type UserDirectoryPGStore struct {
	pool pgBeginner
}

func NewUserDirectoryPGStore(pool pgBeginner) ports.UserDirectory {
	return &UserDirectoryPGStore{pool: pool}
}

func (s *UserDirectoryPGStore) ListUserIDsByRoles(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `SELECT id FROM users WHERE role = ANY($1)`, roleNames)
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
