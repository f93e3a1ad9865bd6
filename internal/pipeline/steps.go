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

package pipeline

import (
	"cloud.google.com/go/logging"
	"context"
	"fmt"
	"time"

	"github.com/ajjensen13/marketdw/internal/extract"
	"github.com/ajjensen13/marketdw/internal/model"
	"github.com/ajjensen13/marketdw/internal/quality"
	"github.com/ajjensen13/marketdw/internal/transform"
	"github.com/ajjensen13/marketdw/internal/util"
)

// locateInputStep verifies the input file exists before anything touches
// the warehouse. Not retryable: waiting will not produce a file.
func (p *Pipeline) locateInputStep() Step {
	return Step{ID: StepLocateInput, Run: func(ctx context.Context, run *Run) error {
		path, err := extract.Locate(p.cfg.InputPath)
		if err != nil {
			return err
		}
		run.SetValue(ValueInputPath, path)
		util.Logf(ctx, logging.Info, "located input file %s", path)
		return nil
	}}
}

// loadStagingStep reads the CSV, validates its schema, and replaces the
// staging relation wholesale. Each retry re-reads the file, so a partially
// written input fixed between attempts loads cleanly.
func (p *Pipeline) loadStagingStep() Step {
	return Step{ID: StepLoadStaging, Retryable: true, Run: func(ctx context.Context, run *Run) error {
		quotes, err := extract.ReadQuotes(run.StringValue(ValueInputPath))
		if err != nil {
			return err
		}
		if err := transform.ValidateHeader(quotes.Header); err != nil {
			return err
		}

		rows, err := transform.StagingRows(quotes.Records)
		if err != nil {
			return fmt.Errorf("failed to transform input records: %w", err)
		}

		staged, err := p.store.ReplaceStaging(ctx, rows)
		if err != nil {
			return err
		}

		expected := p.cfg.ExpectedRows
		if expected <= 0 {
			expected = int64(len(rows))
		}

		run.SetValue(ValueInputRows, int64(len(rows)))
		run.SetValue(ValueStagedRows, staged)
		run.SetValue(ValueExpectedRows, expected)
		util.Logf(ctx, logging.Info, "staged %d of %d input rows", staged, len(rows))
		return nil
	}}
}

// qualityGateStep halts the run before any dimension or fact write when the
// staged batch is short, padded, or holds nulls in required columns.
func (p *Pipeline) qualityGateStep() Step {
	return Step{ID: StepQualityGate, Run: func(ctx context.Context, run *Run) error {
		stats, err := p.store.StagingStats(ctx)
		if err != nil {
			return err
		}
		return quality.Gate(stats, run.Int64Value(ValueExpectedRows))
	}}
}

// checkDuplicatesStep runs beside the dimension build and protects the
// one-fact-per-(instrument, date) invariant.
func (p *Pipeline) checkDuplicatesStep() Step {
	return Step{ID: StepCheckDuplicates, Run: func(ctx context.Context, run *Run) error {
		stats, err := p.store.StagingStats(ctx)
		if err != nil {
			return err
		}
		return quality.Duplicates(stats)
	}}
}

// buildDimensionsStep extends both dimensions from distinct staging
// values. Dimensions are append-only: re-running inserts nothing new.
func (p *Pipeline) buildDimensionsStep() Step {
	return Step{ID: StepBuildDimensions, Retryable: true, Run: func(ctx context.Context, run *Run) error {
		instruments, err := p.store.UpsertInstruments(ctx)
		if err != nil {
			return err
		}

		dates, err := p.store.StagingDates(ctx)
		if err != nil {
			return err
		}
		days := make([]model.CalendarDay, len(dates))
		for i, d := range dates {
			days[i] = model.NewCalendarDay(d)
		}

		newDates, err := p.store.UpsertCalendar(ctx, days)
		if err != nil {
			return err
		}

		run.SetValue(ValueNewInstruments, instruments)
		run.SetValue(ValueNewDates, newDates)
		util.Logf(ctx, logging.Info, "dimensions extended: %d new instruments, %d new dates", instruments, newDates)
		return nil
	}}
}

func (p *Pipeline) buildFactsStep() Step {
	return Step{ID: StepBuildFacts, Retryable: true, Run: func(ctx context.Context, run *Run) error {
		facts, err := p.store.ReplaceDailyFacts(ctx)
		if err != nil {
			return err
		}
		run.SetValue(ValueFactRows, facts)
		util.Logf(ctx, logging.Info, "built %d daily fact rows", facts)
		return nil
	}}
}

// aggregateWeeklyStep recomputes volatility for every week touched by the
// staged dates and overwrites those weeks wholesale.
func (p *Pipeline) aggregateWeeklyStep() Step {
	return Step{ID: StepAggregateWeekly, Retryable: true, Run: func(ctx context.Context, run *Run) error {
		dates, err := p.store.StagingDates(ctx)
		if err != nil {
			return err
		}
		weeks := weekStarts(dates)

		changes, err := p.store.WeeklyChanges(ctx, weeks)
		if err != nil {
			return err
		}

		rows := transform.WeeklyVolatilities(changes)
		inserted, err := p.store.ReplaceWeeklyVolatility(ctx, weeks, rows)
		if err != nil {
			return err
		}

		run.SetValue(ValueWeeks, int64(len(weeks)))
		run.SetValue(ValueVolatilityRows, inserted)
		util.Logf(ctx, logging.Info, "recomputed volatility for %d weeks (%d rows)", len(weeks), inserted)
		return nil
	}}
}

// reportStep produces the top-N volatility summary consumed by downstream
// reporting and leaves the headline message in the run context.
func (p *Pipeline) reportStep() Step {
	return Step{ID: StepReport, Retryable: true, Run: func(ctx context.Context, run *Run) error {
		ranks, err := p.store.TopVolatile(ctx, p.cfg.TopN)
		if err != nil {
			return err
		}

		msg := "no volatility data available"
		if len(ranks) > 0 {
			top := ranks[0]
			msg = fmt.Sprintf("instrument %s recorded the highest average weekly volatility (%.4f)", top.Symbol, top.AvgVolatility)
			if p.cfg.AlertThreshold > 0 && top.AvgVolatility >= p.cfg.AlertThreshold {
				msg += fmt.Sprintf("; above the %.4f alert threshold, review hedges and exposure limits", p.cfg.AlertThreshold)
			}
		}

		for i, r := range ranks {
			util.Logf(ctx, logging.Info, "volatility rank %d: %s (%.4f)", i+1, r.Symbol, r.AvgVolatility)
		}

		run.SetValue(ValueReportMessage, msg)
		return nil
	}}
}

// logSummaryStep records the run outcome for audit. It executes on both
// the success and the failure path and never fails the run itself.
func (p *Pipeline) logSummaryStep() Step {
	return Step{ID: StepLogSummary, Run: func(ctx context.Context, run *Run) error {
		for _, id := range run.StepIDs() {
			if id == StepLogSummary {
				continue
			}
			state := run.Step(id)
			status, attempts, err := state.Outcome()
			if err != nil {
				util.Logf(ctx, logging.Info, "step %s: %s after %d attempts (%v): %v", id, status, attempts, state.Duration(), err)
				continue
			}
			util.Logf(ctx, logging.Info, "step %s: %s after %d attempts (%v)", id, status, attempts, state.Duration())
		}

		util.Logf(ctx, logging.Info,
			"run %s: %d rows staged, %d facts, %d volatility rows across %d weeks",
			run.ID, run.Int64Value(ValueStagedRows), run.Int64Value(ValueFactRows),
			run.Int64Value(ValueVolatilityRows), run.Int64Value(ValueWeeks))

		if msg := run.StringValue(ValueReportMessage); msg != "" {
			util.Logf(ctx, logging.Info, "executive summary: %s", msg)
		}
		return nil
	}}
}

func weekStarts(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	var weeks []time.Time
	for _, d := range dates {
		ws := model.WeekStart(d)
		if seen[ws] {
			continue
		}
		seen[ws] = true
		weeks = append(weeks, ws)
	}
	return weeks
}
