package ports

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// RecordStore runs rule predicates against the generic module record store.
type RecordStore interface {
	// FindIDsMatching returns the IDs of every record of the named module
	// whose fields satisfy the predicate.
	FindIDsMatching(ctx context.Context, moduleName string, pred sq.Sqlizer) ([]string, error)
	CountMatching(ctx context.Context, moduleName string, pred sq.Sqlizer) (int64, error)
}
