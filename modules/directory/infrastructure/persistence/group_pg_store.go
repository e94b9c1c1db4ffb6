package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type GroupPGStore struct {
	pool pgBeginner
}

func NewGroupPGStore(pool pgBeginner) ports.GroupStore {
	return &GroupPGStore{pool: pool}
}

func (s *GroupPGStore) Insert(ctx context.Context, group types.Group) error {
	selectedJSON, err := json.Marshal(group.Selected)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO groups (id, group_name, group_description, group_source, selected)
VALUES ($1, $2, $3, $4, $5)
`, group.ID, group.GroupName, group.GroupDescription, group.GroupSource, selectedJSON)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *GroupPGStore) FindByID(ctx context.Context, id string) (types.Group, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Group{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var group types.Group
	var selectedJSON []byte
	err = tx.QueryRow(ctx, `
SELECT id, group_name, group_description, group_source, selected
FROM groups WHERE id = $1
`, id).Scan(&group.ID, &group.GroupName, &group.GroupDescription, &group.GroupSource, &selectedJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Group{}, ports.ErrGroupNotFound
	}
	if err != nil {
		return types.Group{}, err
	}

	if err := json.Unmarshal(selectedJSON, &group.Selected); err != nil {
		return types.Group{}, err
	}
	return group, tx.Commit(ctx)
}

func (s *GroupPGStore) ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(*) FROM groups WHERE group_name ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT group_name FROM groups
WHERE group_name ILIKE $1
ORDER BY group_name
OFFSET $2 LIMIT $3
`, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, 0, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return names, total, tx.Commit(ctx)
}

func prefixPattern(search string) string {
	search = strings.ReplaceAll(search, `\`, `\\`)
	search = strings.ReplaceAll(search, `%`, `\%`)
	search = strings.ReplaceAll(search, `_`, `\_`)
	return search + "%"
}
