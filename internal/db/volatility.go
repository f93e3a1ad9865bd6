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

package db

import (
	"cloud.google.com/go/logging"
	"context"
	"fmt"
	"github.com/jackc/pgx/v4"
	"time"

	"github.com/ajjensen13/marketdw/internal/model"
	"github.com/ajjensen13/marketdw/internal/util"
)

// WeeklyChanges returns every daily fact observation falling in one of the
// given weeks, keyed by instrument and week start. Null changes are
// included; the aggregator decides how to treat them.
func (w *Warehouse) WeeklyChanges(ctx context.Context, weekStarts []time.Time) ([]model.WeeklyChange, error) {
	ctx, cancel := context.WithTimeout(ctx, util.MedReqTimeout)
	defer cancel()

	rows, err := w.pool.Query(ctx, `
		SELECT f.instrument_key, t.week_start, f.daily_change
		FROM fact_daily_quote f
		JOIN dim_time t ON t.date_key = f.date_key
		WHERE t.week_start = ANY($1::date[])
		ORDER BY f.instrument_key, t.week_start, t.date`, dateParams(weekStarts))
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly changes: %w", err)
	}
	defer rows.Close()

	var changes []model.WeeklyChange
	for rows.Next() {
		var c model.WeeklyChange
		if err := rows.Scan(&c.InstrumentKey, &c.WeekStart, &c.DailyChange); err != nil {
			return nil, fmt.Errorf("failed to parse weekly change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while reading weekly changes: %w", err)
	}

	return changes, nil
}

// ReplaceWeeklyVolatility overwrites volatility_weekly for the affected
// weeks: delete the weeks, then bulk-copy the recomputed rows. Never an
// incremental patch.
func (w *Warehouse) ReplaceWeeklyVolatility(ctx context.Context, weekStarts []time.Time, rows []model.WeeklyVolatility) (int64, error) {
	ctx = util.WithLoggerValue(ctx, "action", "aggregate_weekly")

	var inserted int64
	err := util.RunTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, util.MedReqTimeout)
		defer cancel()

		r, err := tx.Exec(ctx, `DELETE FROM volatility_weekly WHERE week_start = ANY($1::date[])`, dateParams(weekStarts))
		if err != nil {
			return fmt.Errorf("error while clearing weekly volatility: %w", err)
		}
		util.Logf(ctx, logging.Debug, "cleared %d weekly volatility rows for %d weeks", r.RowsAffected(), len(weekStarts))

		src := make([][]interface{}, len(rows))
		for i, row := range rows {
			src[i] = []interface{}{row.WeekStart, row.InstrumentKey, row.Volatility}
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"volatility_weekly"}, []string{"week_start", "instrument_key", "volatility"}, pgx.CopyFromRows(src))
		if err != nil {
			return fmt.Errorf("failed to bulk-copy %d weekly volatility rows: %w", len(rows), err)
		}

		inserted = n
		util.Logf(ctx, logging.Debug, "inserted %d weekly volatility rows", n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// TopVolatile returns the n instruments with the highest average weekly
// volatility, most volatile first. Weeks with null volatility contribute
// nothing to the average.
func (w *Warehouse) TopVolatile(ctx context.Context, n int) ([]model.VolatilityRank, error) {
	ctx, cancel := context.WithTimeout(ctx, util.ShortReqTimeout)
	defer cancel()

	rows, err := w.pool.Query(ctx, `
		SELECT i.symbol, AVG(v.volatility) AS avg_volatility
		FROM volatility_weekly v
		JOIN dim_instrument i ON i.instrument_key = v.instrument_key
		WHERE v.volatility IS NOT NULL
		GROUP BY i.symbol
		ORDER BY avg_volatility DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top volatile instruments: %w", err)
	}
	defer rows.Close()

	var ranks []model.VolatilityRank
	for rows.Next() {
		var r model.VolatilityRank
		if err := rows.Scan(&r.Symbol, &r.AvgVolatility); err != nil {
			return nil, fmt.Errorf("failed to parse volatility rank: %w", err)
		}
		ranks = append(ranks, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while reading volatility ranks: %w", err)
	}

	return ranks, nil
}
