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

// Package db is the only writer of the warehouse relations. Each method is
// one step-sized unit of work: a single transaction that either commits
// fully or leaves the warehouse untouched, so the orchestrator can retry it.
package db

import (
	"cloud.google.com/go/logging"
	"context"
	"fmt"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"time"

	"github.com/ajjensen13/marketdw/internal/model"
	"github.com/ajjensen13/marketdw/internal/util"
)

type Warehouse struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Warehouse {
	return &Warehouse{pool: pool}
}

// ReplaceStaging truncates the staging relation and bulk-loads rows via the
// COPY protocol. Truncate-then-copy keeps re-runs safe: staging only ever
// holds one complete batch or none.
func (w *Warehouse) ReplaceStaging(ctx context.Context, rows []model.StagingRow) (int64, error) {
	ctx = util.WithLoggerValue(ctx, "action", "load_staging")

	var loaded int64
	err := util.RunTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, util.MedReqTimeout)
		defer cancel()

		_, err := tx.Exec(ctx, `TRUNCATE TABLE staging`)
		if err != nil {
			return fmt.Errorf("failed to truncate staging: %w", err)
		}

		src := make([][]interface{}, len(rows))
		for i, r := range rows {
			vs, err := stagingValues(r)
			if err != nil {
				return fmt.Errorf("failed to encode staging row %d: %w", i+1, err)
			}
			src[i] = vs
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"staging"}, []string{"date", "symbol", "open", "high", "low", "close", "volume"}, pgx.CopyFromRows(src))
		if err != nil {
			return fmt.Errorf("failed to bulk-copy %d rows into staging: %w", len(rows), err)
		}

		loaded = n
		util.Logf(ctx, logging.Debug, "bulk-copied %d rows into staging", n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loaded, nil
}

// StagingStats reports the row count, the null counts of the required
// columns, and the number of surplus (symbol, date) duplicates.
func (w *Warehouse) StagingStats(ctx context.Context) (model.StagingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, util.ShortReqTimeout)
	defer cancel()

	var stats model.StagingStats
	err := w.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) - COUNT(date),
			COUNT(*) - COUNT(symbol),
			COUNT(*) - COUNT(close),
			COUNT(*) - COUNT(DISTINCT (symbol, date))
		FROM staging`).Scan(&stats.Rows, &stats.NullDates, &stats.NullSymbols, &stats.NullCloses, &stats.DuplicatePairs)
	if err != nil {
		return model.StagingStats{}, fmt.Errorf("failed to query staging stats: %w", err)
	}

	return stats, nil
}

// StagingDates returns the distinct non-null dates present in the staged
// batch, ascending.
func (w *Warehouse) StagingDates(ctx context.Context) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, util.ShortReqTimeout)
	defer cancel()

	rows, err := w.pool.Query(ctx, `SELECT DISTINCT date FROM staging WHERE date IS NOT NULL ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staging dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to parse staging date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while reading staging dates: %w", err)
	}

	return dates, nil
}

// stagingValues maps a staging row onto pgtype column values. Nil fields
// become SQL NULLs.
func stagingValues(r model.StagingRow) ([]interface{}, error) {
	var (
		date            pgtype.Date
		symbol          pgtype.Text
		open, high      pgtype.Float8
		low, closeOfDay pgtype.Float8
		volume          pgtype.Int8
	)

	for _, set := range []struct {
		col string
		err error
	}{
		{"date", date.Set(r.Date)},
		{"symbol", symbol.Set(r.Symbol)},
		{"open", open.Set(r.Open)},
		{"high", high.Set(r.High)},
		{"low", low.Set(r.Low)},
		{"close", closeOfDay.Set(r.Close)},
		{"volume", volume.Set(r.Volume)},
	} {
		if set.err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", set.col, set.err)
		}
	}

	return []interface{}{date, symbol, open, high, low, closeOfDay, volume}, nil
}

func dateParams(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	return out
}
