package persistence

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/lodestarhq/lodestar/modules/catalog/domain/ports"
	"github.com/lodestarhq/lodestar/modules/catalog/domain/types"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CatalogPGStore struct {
	pool pgBeginner
}

func NewCatalogPGStore(pool pgBeginner) ports.CatalogStore {
	return &CatalogPGStore{pool: pool}
}

func (s *CatalogPGStore) ListModuleFieldTypes(ctx context.Context) (map[string]map[string]types.FieldType, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT module_name, module_fields
FROM module_catalogs
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]types.FieldType)
	for rows.Next() {
		var moduleName string
		var fieldsJSON []byte
		if err := rows.Scan(&moduleName, &fieldsJSON); err != nil {
			return nil, err
		}

		var fields []types.ModuleField
		if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
			return nil, err
		}

		fieldTypes := make(map[string]types.FieldType, len(fields))
		for _, field := range fields {
			if field.FieldName == "" {
				continue
			}
			if parsed, ok := types.ParseFieldType(string(field.FieldType)); ok {
				fieldTypes[field.FieldName] = parsed
			}
		}
		out[moduleName] = fieldTypes
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
