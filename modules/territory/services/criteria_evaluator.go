package services

import (
	"context"
	"sort"

	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

const (
	errCriteriaOrderInvalid = "CRITERIA_ORDER_INVALID"
	errCriteriaRuleNotFound = "CRITERIA_RULE_NOT_FOUND"
)

type idSet map[string]struct{}

// CriteriaEvaluator evaluates a criteria order against a territory's account
// rules, producing the matching record-ID set. Rules are resolved by number;
// a number with no matching rule is a configuration error, unlike the
// translator's soft-empty policy for type mismatches.
type CriteriaEvaluator struct {
	translator *RuleTranslator
	records    ports.RecordStore
	moduleName string
}

func NewCriteriaEvaluator(translator *RuleTranslator, records ports.RecordStore, moduleName string) *CriteriaEvaluator {
	return &CriteriaEvaluator{translator: translator, records: records, moduleName: moduleName}
}

// Evaluate returns the sorted record IDs matching the criteria order. An
// empty criteria order evaluates to the empty set.
func (e *CriteriaEvaluator) Evaluate(ctx context.Context, criteriaOrder string, rules []types.AccountRule) ([]string, error) {
	expr, err := ParseCriteria(criteriaOrder)
	if err != nil {
		return nil, httperr.NewBadRequest(errCriteriaOrderInvalid)
	}
	if expr == nil {
		return []string{}, nil
	}

	set, err := e.evaluateExpr(ctx, expr, rules)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (e *CriteriaEvaluator) evaluateExpr(ctx context.Context, expr criteriaExpr, rules []types.AccountRule) (idSet, error) {
	switch node := expr.(type) {
	case ruleRef:
		rule, ok := findRule(node.number, rules)
		if !ok {
			return nil, httperr.NewBadRequest(errCriteriaRuleNotFound)
		}
		return e.evaluateRule(ctx, rule)
	case boolExpr:
		left, err := e.evaluateExpr(ctx, node.left, rules)
		if err != nil {
			return nil, err
		}
		right, err := e.evaluateExpr(ctx, node.right, rules)
		if err != nil {
			return nil, err
		}
		if node.op == tokenAnd {
			return intersect(left, right), nil
		}
		return union(left, right), nil
	default:
		return nil, httperr.NewBadRequest(errCriteriaOrderInvalid)
	}
}

func (e *CriteriaEvaluator) evaluateRule(ctx context.Context, rule types.AccountRule) (idSet, error) {
	pred, err := e.translator.Translate(ctx, rule)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return idSet{}, nil
	}

	ids, err := e.records.FindIDsMatching(ctx, e.moduleName, pred)
	if err != nil {
		return nil, err
	}

	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func findRule(number int, rules []types.AccountRule) (types.AccountRule, bool) {
	for _, rule := range rules {
		if rule.RuleNumber == number {
			return rule, true
		}
	}
	return types.AccountRule{}, false
}

func intersect(a idSet, b idSet) idSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(idSet, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func union(a idSet, b idSet) idSet {
	out := make(idSet, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}
