package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type RolePGStore struct {
	pool pgBeginner
}

func NewRolePGStore(pool pgBeginner) ports.RoleStore {
	return &RolePGStore{pool: pool}
}

const roleColumns = `id, role_name, reports_to, share_data_with_peers, description, associated_users`

func (s *RolePGStore) Insert(ctx context.Context, role types.Role) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO roles (id, role_name, reports_to, share_data_with_peers, description, associated_users)
VALUES ($1, $2, $3, $4, $5, $6)
`, role.ID, role.RoleName, role.ReportsTo, role.ShareDataWithPeers, role.Description, role.AssociatedUsers)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *RolePGStore) FindByID(ctx context.Context, id string) (types.Role, error) {
	return s.findWhere(ctx, `id = $1 AND role_name <> '`+types.RootRoleName+`'`, id)
}

func (s *RolePGStore) FindByName(ctx context.Context, name string) (types.Role, error) {
	return s.findWhere(ctx, `role_name = $1`, name)
}

func (s *RolePGStore) findWhere(ctx context.Context, where string, arg any) (types.Role, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Role{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var role types.Role
	err = tx.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE `+where, arg).
		Scan(&role.ID, &role.RoleName, &role.ReportsTo, &role.ShareDataWithPeers,
			&role.Description, &role.AssociatedUsers)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Role{}, ports.ErrRoleNotFound
	}
	if err != nil {
		return types.Role{}, err
	}
	if role.AssociatedUsers == nil {
		role.AssociatedUsers = []string{}
	}

	return role, tx.Commit(ctx)
}

func (s *RolePGStore) CountByName(ctx context.Context, name string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM roles WHERE role_name = $1`, name).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}

func (s *RolePGStore) ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(*) FROM roles WHERE role_name ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT role_name FROM roles
WHERE role_name ILIKE $1
ORDER BY role_name
OFFSET $2 LIMIT $3
`, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	names, err := collectStrings(rows)
	if err != nil {
		return nil, 0, err
	}
	return names, total, tx.Commit(ctx)
}

func (s *RolePGStore) ListParentNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(DISTINCT reports_to)
FROM roles
WHERE reports_to <> '' AND reports_to ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT DISTINCT reports_to
FROM roles
WHERE reports_to <> '' AND reports_to ILIKE $1
ORDER BY reports_to
OFFSET $2 LIMIT $3
`, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	names, err := collectStrings(rows)
	if err != nil {
		return nil, 0, err
	}
	return names, total, tx.Commit(ctx)
}

func (s *RolePGStore) ListHierarchyRecords(ctx context.Context) ([]hierarchy.Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT role_name, id, reports_to
FROM roles
WHERE reports_to <> ''
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []hierarchy.Record
	for rows.Next() {
		var rec hierarchy.Record
		if err := rows.Scan(&rec.Name, &rec.ID, &rec.Parent); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, tx.Commit(ctx)
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func prefixPattern(search string) string {
	search = strings.ReplaceAll(search, `\`, `\\`)
	search = strings.ReplaceAll(search, `%`, `\%`)
	search = strings.ReplaceAll(search, `_`, `\_`)
	return search + "%"
}
