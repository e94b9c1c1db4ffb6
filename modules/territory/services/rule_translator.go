package services

import (
	"context"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	catalogtypes "github.com/lodestarhq/lodestar/modules/catalog/domain/types"
	catalogservices "github.com/lodestarhq/lodestar/modules/catalog/services"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
)

// RuleTranslator maps one account rule into a SQL predicate over the module
// record store's fields column. A nil predicate with a nil error means the
// rule matches nothing: type/operand mismatches are resolved to the empty set
// instead of failing the evaluation.
type RuleTranslator struct {
	catalog    catalogservices.Catalog
	moduleName string
}

func NewRuleTranslator(catalog catalogservices.Catalog, moduleName string) *RuleTranslator {
	return &RuleTranslator{catalog: catalog, moduleName: moduleName}
}

func (t *RuleTranslator) Translate(ctx context.Context, rule types.AccountRule) (sq.Sqlizer, error) {
	fieldType, ok, err := t.catalog.FieldType(ctx, t.moduleName, rule.Field)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The field may have been added after the catalog was cached.
		if err := t.catalog.Reload(ctx); err != nil {
			return nil, err
		}
		fieldType, ok, err = t.catalog.FieldType(ctx, t.moduleName, rule.Field)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	if fieldType.Numeric() {
		return t.translateNumeric(rule, fieldType), nil
	}
	return t.translateText(rule), nil
}

func (t *RuleTranslator) translateNumeric(rule types.AccountRule, fieldType catalogtypes.FieldType) sq.Sqlizer {
	switch rule.Operator {
	case types.OpIsEmpty, types.OpIsNotEmpty, types.OpContains, types.OpNotContains,
		types.OpStartsWith, types.OpEndsWith:
		// String operators never apply to numeric fields.
		return nil
	case types.OpBetween, types.OpNotBetween:
		if rule.From == "" || rule.To == "" {
			return nil
		}
	default:
		if rule.TextValue == "" {
			return nil
		}
	}

	coerce := func(raw string) (string, bool) {
		if fieldType == catalogtypes.FieldTypeInt {
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return "", false
			}
			return strconv.FormatInt(n, 10), true
		}
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return "", false
		}
		return d.String(), true
	}

	column := "(fields->>?)::numeric"

	switch rule.Operator {
	case types.OpBetween, types.OpNotBetween:
		from, okFrom := coerce(rule.From)
		to, okTo := coerce(rule.To)
		if !okFrom || !okTo {
			return nil
		}
		if rule.Operator == types.OpBetween {
			return sq.Expr(column+" >= ?::numeric AND "+column+" <= ?::numeric",
				rule.Field, from, rule.Field, to)
		}
		return sq.Expr("("+column+" <= ?::numeric OR "+column+" >= ?::numeric)",
			rule.Field, from, rule.Field, to)
	}

	value, ok := coerce(rule.TextValue)
	if !ok {
		return nil
	}

	switch rule.Operator {
	case types.OpEquals:
		return sq.Expr(column+" = ?::numeric", rule.Field, value)
	case types.OpNotEquals:
		// IS DISTINCT FROM matches records missing the field entirely.
		return sq.Expr(column+" IS DISTINCT FROM ?::numeric", rule.Field, value)
	case types.OpLessThan:
		return sq.Expr(column+" < ?::numeric", rule.Field, value)
	case types.OpLessOrEqual:
		return sq.Expr(column+" <= ?::numeric", rule.Field, value)
	case types.OpGreaterThan:
		return sq.Expr(column+" > ?::numeric", rule.Field, value)
	case types.OpGreaterOrEqual:
		return sq.Expr(column+" >= ?::numeric", rule.Field, value)
	default:
		return nil
	}
}

func (t *RuleTranslator) translateText(rule types.AccountRule) sq.Sqlizer {
	column := "fields->>?"

	switch rule.Operator {
	case types.OpEquals:
		return sq.Expr(column+" = ?", rule.Field, rule.TextValue)
	case types.OpNotEquals:
		return sq.Expr(column+" IS DISTINCT FROM ?", rule.Field, rule.TextValue)
	case types.OpLessThan:
		return sq.Expr(column+" < ?", rule.Field, rule.TextValue)
	case types.OpLessOrEqual:
		return sq.Expr(column+" <= ?", rule.Field, rule.TextValue)
	case types.OpGreaterThan:
		return sq.Expr(column+" > ?", rule.Field, rule.TextValue)
	case types.OpGreaterOrEqual:
		return sq.Expr(column+" >= ?", rule.Field, rule.TextValue)
	case types.OpBetween:
		return sq.Expr(column+" >= ? AND "+column+" <= ?",
			rule.Field, rule.From, rule.Field, rule.To)
	case types.OpNotBetween:
		return sq.Expr("("+column+" <= ? OR "+column+" >= ?)",
			rule.Field, rule.From, rule.Field, rule.To)
	case types.OpIsEmpty:
		return sq.Expr(column+" = ''", rule.Field)
	case types.OpIsNotEmpty:
		return sq.Expr(column+" IS DISTINCT FROM ''", rule.Field)
	case types.OpContains:
		return sq.Expr(column+" ILIKE ?", rule.Field, "%"+escapeLike(rule.TextValue)+"%")
	case types.OpNotContains:
		// NULL fields stay unmatched, same as a regex on a missing field.
		return sq.Expr(column+" NOT ILIKE ?", rule.Field, "%"+escapeLike(rule.TextValue)+"%")
	case types.OpStartsWith:
		return sq.Expr(column+" ILIKE ?", rule.Field, escapeLike(rule.TextValue)+"%")
	case types.OpEndsWith:
		return sq.Expr(column+" ILIKE ?", rule.Field, "%"+escapeLike(rule.TextValue))
	default:
		return nil
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
