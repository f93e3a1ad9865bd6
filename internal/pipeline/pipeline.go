/*
Copyright © 2021 A. Jensen <jensen.aaro@gmail.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package pipeline sequences one warehouse load end to end:
//
//	locate_input → load_staging → quality_gate →
//	{build_dimensions ∥ check_duplicates} → build_facts →
//	aggregate_weekly → report → log_summary
//
// The external scheduler owns cadence and exclusivity (one run at a time);
// this package owns step ordering, the retry policy, and the run-scoped
// context passed between steps.
package pipeline

import (
	"cloud.google.com/go/logging"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ajjensen13/marketdw/internal/extract"
	"github.com/ajjensen13/marketdw/internal/model"
	"github.com/ajjensen13/marketdw/internal/quality"
	"github.com/ajjensen13/marketdw/internal/transform"
	"github.com/ajjensen13/marketdw/internal/util"
)

// Store is the narrow read/write contract each step holds on the
// warehouse. *db.Warehouse implements it in production.
type Store interface {
	ReplaceStaging(ctx context.Context, rows []model.StagingRow) (int64, error)
	StagingStats(ctx context.Context) (model.StagingStats, error)
	StagingDates(ctx context.Context) ([]time.Time, error)
	UpsertInstruments(ctx context.Context) (int64, error)
	UpsertCalendar(ctx context.Context, days []model.CalendarDay) (int64, error)
	ReplaceDailyFacts(ctx context.Context) (int64, error)
	WeeklyChanges(ctx context.Context, weekStarts []time.Time) ([]model.WeeklyChange, error)
	ReplaceWeeklyVolatility(ctx context.Context, weekStarts []time.Time, rows []model.WeeklyVolatility) (int64, error)
	TopVolatile(ctx context.Context, n int) ([]model.VolatilityRank, error)
}

const (
	// DefaultRetryDelay between attempts of a failed retryable step.
	DefaultRetryDelay = 5 * time.Minute
	// DefaultMaxRetries after the initial attempt of a retryable step.
	DefaultMaxRetries = 3
	// DefaultTopN instruments in the volatility report.
	DefaultTopN = 1
)

type Config struct {
	// InputPath locates the CSV batch to ingest.
	InputPath string
	// ExpectedRows overrides the quality-gate row threshold. When zero the
	// gate expects exactly the input file's data-line count.
	ExpectedRows int64
	// TopN instruments to include in the volatility report.
	TopN int
	// AlertThreshold flags report entries at or above this average weekly
	// volatility. Zero disables the flag.
	AlertThreshold float64
	// RetryDelay between attempts of a failed retryable step.
	RetryDelay time.Duration
	// MaxRetries after the initial attempt of a retryable step.
	MaxRetries uint64
}

type Pipeline struct {
	store Store
	cfg   Config
}

func New(store Store, cfg Config) *Pipeline {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	return &Pipeline{store: store, cfg: cfg}
}

// Run executes one pipeline run. The returned Run records every step
// outcome even when the run fails; log_summary executes on both the
// success and the failure path.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	run := NewRun(time.Now().UTC().Format("20060102T150405Z"),
		StepLocateInput, StepLoadStaging, StepQualityGate,
		StepBuildDimensions, StepCheckDuplicates,
		StepBuildFacts, StepAggregateWeekly, StepReport, StepLogSummary)

	ctx = util.WithLoggerValue(ctx, "run_id", run.ID)
	run.start()
	util.Logf(ctx, logging.Info, "starting pipeline run %s", run.ID)

	err := p.runSteps(ctx, run)

	// Best effort on the failure path: the summary must not mask the
	// original error.
	if sErr := p.exec(ctx, run, p.logSummaryStep()); sErr != nil {
		if err != nil {
			util.Logf(ctx, logging.Warning, "failed to log run summary: %v", sErr)
		}
		err = summaryErr(err, sErr)
	}

	if err != nil {
		run.fail(err)
		return run, err
	}

	run.complete()
	return run, nil
}

func (p *Pipeline) runSteps(ctx context.Context, run *Run) error {
	for _, step := range []Step{p.locateInputStep(), p.loadStagingStep(), p.qualityGateStep()} {
		if err := p.exec(ctx, run, step); err != nil {
			return err
		}
	}

	// The dimension build and the duplicate check are independent; both
	// must finish before facts reference dimension keys.
	g, gctx := errgroup.WithContext(ctx)
	for _, step := range []Step{p.buildDimensionsStep(), p.checkDuplicatesStep()} {
		step := step
		g.Go(func() error { return p.exec(gctx, run, step) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, step := range []Step{p.buildFactsStep(), p.aggregateWeeklyStep(), p.reportStep()} {
		if err := p.exec(ctx, run, step); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) exec(ctx context.Context, run *Run, step Step) error {
	ctx = util.WithLoggerValue(ctx, "step", step.ID)

	state := run.Step(step.ID)
	state.start()

	op := func() error {
		state.attempt()
		err := step.Run(ctx, run)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var bo backoff.BackOff = &backoff.StopBackOff{}
	if step.Retryable {
		bo = backoff.WithMaxRetries(backoff.NewConstantBackOff(p.cfg.RetryDelay), p.cfg.MaxRetries)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		util.Logf(ctx, logging.Warning, "step %s failed, waiting %v before retrying: %v", step.ID, wait, err)
	})
	if err != nil {
		state.fail(err)
		_, attempts, _ := state.Outcome()
		util.Logf(ctx, logging.Error, "step %s fatally failed after %d attempts: %v", step.ID, attempts, err)
		return fmt.Errorf("step %s failed: %w", step.ID, err)
	}

	state.succeed()
	util.Logf(ctx, logging.Info, "step %s succeeded in %v", step.ID, state.Duration())
	return nil
}

// summaryErr decides which error a run reports when the summary step also
// fails: the original run error always wins.
func summaryErr(runErr, sErr error) error {
	if runErr != nil {
		return runErr
	}
	return sErr
}

// isPermanent classifies failures retrying can never fix: absent input
// files and data-quality violations. Everything else (connection drops,
// lock timeouts, SQL failures) is retried until the policy gives up.
func isPermanent(err error) bool {
	var qErr *quality.Error
	return errors.Is(err, extract.ErrMissingInput) ||
		errors.Is(err, transform.ErrSchemaMismatch) ||
		errors.As(err, &qErr)
}
