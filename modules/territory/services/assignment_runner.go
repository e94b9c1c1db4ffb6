package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lodestarhq/lodestar/internal/metrics"
	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

const (
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
	outcomeUpdated = "updated"
)

// defaultEvaluationWorkers bounds concurrent rule queries against the shared
// record store.
const defaultEvaluationWorkers = 4

// AssignmentReport is the consolidated result of one assignment run: every
// non-root territory lands in exactly one bucket.
type AssignmentReport struct {
	Invalid []string `json:"invalid"`
	Failed  []string `json:"failed"`
	Updated []string `json:"updated"`
}

// Message renders the report the way operators read it.
func (r AssignmentReport) Message() string {
	var b strings.Builder
	if len(r.Invalid) > 0 {
		fmt.Fprintf(&b, "Criteria order not valid for territories: [%s]. ", strings.Join(r.Invalid, ", "))
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, "Territories with update problem: [%s]. ", strings.Join(r.Failed, ", "))
	}
	if len(r.Updated) > 0 {
		fmt.Fprintf(&b, "Territories successfully updated: [%s].", strings.Join(r.Updated, ", "))
	}
	return strings.TrimSpace(b.String())
}

// AssignmentRunner rebuilds every non-root territory's accounts set from its
// criteria. Invalid criteria and unresolvable rule references park the
// territory in the invalid bucket without touching its accounts; only
// infrastructure failures abort the whole run.
type AssignmentRunner struct {
	territories ports.TerritoryStore
	evaluator   *CriteriaEvaluator
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	workers     int
}

func NewAssignmentRunner(territories ports.TerritoryStore, evaluator *CriteriaEvaluator, logger logrus.FieldLogger, m *metrics.Metrics) *AssignmentRunner {
	return &AssignmentRunner{
		territories: territories,
		evaluator:   evaluator,
		logger:      logger,
		metrics:     m,
		workers:     defaultEvaluationWorkers,
	}
}

func (r *AssignmentRunner) Run(ctx context.Context) (AssignmentReport, error) {
	start := time.Now()
	if r.metrics != nil {
		r.metrics.AssignmentRuns.Inc()
	}

	territories, err := r.territories.ListNonRoot(ctx)
	if err != nil {
		return AssignmentReport{}, err
	}

	// One outcome slot per territory keeps report buckets deterministic no
	// matter how the workers interleave.
	outcomes := make([]string, len(territories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, territory := range territories {
		g.Go(func() error {
			if !ValidateCriteria(territory.CriteriaOrder) {
				outcomes[i] = outcomeInvalid
				return nil
			}

			accounts, err := r.evaluator.Evaluate(gctx, territory.CriteriaOrder, territory.AccountRules)
			if err != nil {
				if httperr.IsBadRequest(err) {
					outcomes[i] = outcomeInvalid
					return nil
				}
				return err
			}

			matched, err := r.territories.UpdateAccounts(gctx, territory.ID, accounts)
			if err != nil {
				return err
			}
			if matched == 0 {
				outcomes[i] = outcomeFailed
				return nil
			}
			outcomes[i] = outcomeUpdated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.WithError(err).Error("assignment run aborted")
		return AssignmentReport{}, err
	}

	report := AssignmentReport{Invalid: []string{}, Failed: []string{}, Updated: []string{}}
	for i, territory := range territories {
		switch outcomes[i] {
		case outcomeInvalid:
			report.Invalid = append(report.Invalid, territory.TerritoryName)
		case outcomeFailed:
			report.Failed = append(report.Failed, territory.TerritoryName)
		case outcomeUpdated:
			report.Updated = append(report.Updated, territory.TerritoryName)
		}
		if r.metrics != nil {
			r.metrics.CountTerritoryOutcome(outcomes[i])
		}
	}

	if r.metrics != nil {
		r.metrics.ObserveAssignmentRun(start)
	}
	r.logger.WithFields(logrus.Fields{
		"territories": len(territories),
		"invalid":     len(report.Invalid),
		"failed":      len(report.Failed),
		"updated":     len(report.Updated),
		"duration":    time.Since(start).String(),
	}).Info("assignment run finished")

	return report, nil
}
