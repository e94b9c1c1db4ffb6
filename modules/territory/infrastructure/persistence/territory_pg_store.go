package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type TerritoryPGStore struct {
	pool pgBeginner
}

func NewTerritoryPGStore(pool pgBeginner) ports.TerritoryStore {
	return &TerritoryPGStore{pool: pool}
}

const territoryColumns = `
id, territory_name, parent_territory, root_territory, territory_manager,
users, permissions, description, account_rules, criteria_order, accounts
`

func (s *TerritoryPGStore) Insert(ctx context.Context, territory types.Territory) error {
	managerJSON, usersJSON, rulesJSON, err := marshalTerritoryDocs(territory)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO territories (
  id, territory_name, parent_territory, root_territory, territory_manager,
  users, permissions, description, account_rules, criteria_order, accounts
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, territory.ID, territory.TerritoryName, territory.ParentTerritory,
		territory.RootTerritory, managerJSON, usersJSON, territory.Permissions,
		territory.Description, rulesJSON, territory.CriteriaOrder, territory.Accounts)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *TerritoryPGStore) FindByID(ctx context.Context, id string) (types.Territory, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Territory{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	row := tx.QueryRow(ctx, `
SELECT `+territoryColumns+`
FROM territories
WHERE id = $1 AND root_territory IS NOT TRUE
`, id)

	territory, err := scanTerritory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Territory{}, ports.ErrTerritoryNotFound
	}
	if err != nil {
		return types.Territory{}, err
	}

	return territory, tx.Commit(ctx)
}

func (s *TerritoryPGStore) FindRoot(ctx context.Context) (types.Territory, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Territory{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	row := tx.QueryRow(ctx, `
SELECT `+territoryColumns+`
FROM territories
WHERE root_territory IS TRUE
`)

	territory, err := scanTerritory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Territory{}, ports.ErrNoRootTerritory
	}
	if err != nil {
		return types.Territory{}, err
	}

	return territory, tx.Commit(ctx)
}

func (s *TerritoryPGStore) CountByName(ctx context.Context, name string) (int64, error) {
	return s.countWhere(ctx, `territory_name = $1`, name)
}

func (s *TerritoryPGStore) CountChildren(ctx context.Context, parentName string) (int64, error) {
	return s.countWhere(ctx, `parent_territory = $1`, parentName)
}

func (s *TerritoryPGStore) countWhere(ctx context.Context, where string, arg any) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM territories WHERE `+where, arg).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}

func (s *TerritoryPGStore) ListNonRoot(ctx context.Context) ([]types.Territory, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+territoryColumns+`
FROM territories
WHERE root_territory IS NOT TRUE
ORDER BY territory_name
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var territories []types.Territory
	for rows.Next() {
		territory, err := scanTerritory(rows)
		if err != nil {
			return nil, err
		}
		territories = append(territories, territory)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return territories, tx.Commit(ctx)
}

func (s *TerritoryPGStore) ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(*) FROM territories WHERE territory_name ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT territory_name
FROM territories
WHERE territory_name ILIKE $1
ORDER BY territory_name
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

func (s *TerritoryPGStore) ListParentNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	pattern := prefixPattern(search)

	var total int64
	if err := tx.QueryRow(ctx, `
SELECT count(DISTINCT parent_territory)
FROM territories
WHERE parent_territory <> '' AND parent_territory ILIKE $1
`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, `
SELECT DISTINCT parent_territory
FROM territories
WHERE parent_territory <> '' AND parent_territory ILIKE $1
ORDER BY parent_territory
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

func (s *TerritoryPGStore) UpdateAccounts(ctx context.Context, id string, accounts []string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
UPDATE territories SET accounts = $2
WHERE id = $1 AND root_territory IS NOT TRUE
`, id, accounts)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), tx.Commit(ctx)
}

func (s *TerritoryPGStore) ListHierarchyRecords(ctx context.Context) ([]hierarchy.Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT territory_name, id, parent_territory
FROM territories
WHERE root_territory IS NOT TRUE
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

func scanTerritory(row pgx.Row) (types.Territory, error) {
	var t types.Territory
	var managerJSON, usersJSON, rulesJSON []byte
	err := row.Scan(&t.ID, &t.TerritoryName, &t.ParentTerritory, &t.RootTerritory,
		&managerJSON, &usersJSON, &t.Permissions, &t.Description, &rulesJSON,
		&t.CriteriaOrder, &t.Accounts)
	if err != nil {
		return types.Territory{}, err
	}

	if err := json.Unmarshal(managerJSON, &t.TerritoryManager); err != nil {
		return types.Territory{}, err
	}
	if err := json.Unmarshal(usersJSON, &t.Users); err != nil {
		return types.Territory{}, err
	}
	if err := json.Unmarshal(rulesJSON, &t.AccountRules); err != nil {
		return types.Territory{}, err
	}
	if t.Accounts == nil {
		t.Accounts = []string{}
	}
	return t, nil
}

func marshalTerritoryDocs(territory types.Territory) ([]byte, []byte, []byte, error) {
	managerJSON, err := json.Marshal(territory.TerritoryManager)
	if err != nil {
		return nil, nil, nil, err
	}
	usersJSON, err := json.Marshal(territory.Users)
	if err != nil {
		return nil, nil, nil, err
	}
	rulesJSON, err := json.Marshal(territory.AccountRules)
	if err != nil {
		return nil, nil, nil, err
	}
	return managerJSON, usersJSON, rulesJSON, nil
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

// prefixPattern turns a user search term into a prefix ILIKE pattern.
func prefixPattern(search string) string {
	search = strings.ReplaceAll(search, `\`, `\\`)
	search = strings.ReplaceAll(search, `%`, `\%`)
	search = strings.ReplaceAll(search, `_`, `\_`)
	return search + "%"
}
