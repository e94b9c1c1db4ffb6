package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
)

type SharingRulePGStore struct {
	pool pgBeginner
}

func NewSharingRulePGStore(pool pgBeginner) ports.SharingRuleStore {
	return &SharingRulePGStore{pool: pool}
}

const sharingRuleColumns = `
id, modules, records_shared_from, records_shared_from_selected,
records_shared_to, records_shared_to_selected, access_type, superiors_allowed
`

func (s *SharingRulePGStore) Insert(ctx context.Context, rule types.SharingRule) error {
	modulesJSON, fromJSON, toJSON, err := marshalSharingRuleDocs(rule)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(ctx, `
INSERT INTO sharing_rules (
  id, modules, records_shared_from, records_shared_from_selected,
  records_shared_to, records_shared_to_selected, access_type, superiors_allowed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, rule.ID, modulesJSON, rule.RecordsSharedFrom, fromJSON,
		rule.RecordsSharedTo, toJSON, rule.AccessType, rule.SuperiorsAllowed)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *SharingRulePGStore) FindByID(ctx context.Context, id string) (types.SharingRule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.SharingRule{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	row := tx.QueryRow(ctx, `SELECT `+sharingRuleColumns+` FROM sharing_rules WHERE id = $1`, id)
	rule, err := scanSharingRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.SharingRule{}, ports.ErrSharingRuleNotFound
	}
	if err != nil {
		return types.SharingRule{}, err
	}

	return rule, tx.Commit(ctx)
}

func (s *SharingRulePGStore) Update(ctx context.Context, rule types.SharingRule) (int64, error) {
	modulesJSON, fromJSON, toJSON, err := marshalSharingRuleDocs(rule)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `
UPDATE sharing_rules SET
  modules = $2, records_shared_from = $3, records_shared_from_selected = $4,
  records_shared_to = $5, records_shared_to_selected = $6,
  access_type = $7, superiors_allowed = $8
WHERE id = $1
`, rule.ID, modulesJSON, rule.RecordsSharedFrom, fromJSON,
		rule.RecordsSharedTo, toJSON, rule.AccessType, rule.SuperiorsAllowed)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), tx.Commit(ctx)
}

func (s *SharingRulePGStore) Delete(ctx context.Context, id string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM sharing_rules WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), tx.Commit(ctx)
}

func (s *SharingRulePGStore) List(ctx context.Context) ([]types.SharingRule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `SELECT `+sharingRuleColumns+` FROM sharing_rules ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []types.SharingRule{}
	for rows.Next() {
		rule, err := scanSharingRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, tx.Commit(ctx)
}

func scanSharingRule(row pgx.Row) (types.SharingRule, error) {
	var rule types.SharingRule
	var modulesJSON, fromJSON, toJSON []byte
	err := row.Scan(&rule.ID, &modulesJSON, &rule.RecordsSharedFrom, &fromJSON,
		&rule.RecordsSharedTo, &toJSON, &rule.AccessType, &rule.SuperiorsAllowed)
	if err != nil {
		return types.SharingRule{}, err
	}

	if err := json.Unmarshal(modulesJSON, &rule.Modules); err != nil {
		return types.SharingRule{}, err
	}
	if err := json.Unmarshal(fromJSON, &rule.RecordsSharedFromSelected); err != nil {
		return types.SharingRule{}, err
	}
	if err := json.Unmarshal(toJSON, &rule.RecordsSharedToSelected); err != nil {
		return types.SharingRule{}, err
	}
	return rule, nil
}

func marshalSharingRuleDocs(rule types.SharingRule) ([]byte, []byte, []byte, error) {
	modulesJSON, err := json.Marshal(rule.Modules)
	if err != nil {
		return nil, nil, nil, err
	}
	fromJSON, err := json.Marshal(rule.RecordsSharedFromSelected)
	if err != nil {
		return nil, nil, nil, err
	}
	toJSON, err := json.Marshal(rule.RecordsSharedToSelected)
	if err != nil {
		return nil, nil, nil, err
	}
	return modulesJSON, fromJSON, toJSON, nil
}
