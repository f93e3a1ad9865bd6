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

	"github.com/ajjensen13/marketdw/internal/model"
	"github.com/ajjensen13/marketdw/internal/util"
)

// UpsertInstruments inserts one dim_instrument row per distinct staging
// symbol not seen before. Existing symbols keep their surrogate key, so the
// dimension is append-only across runs.
func (w *Warehouse) UpsertInstruments(ctx context.Context) (int64, error) {
	ctx = util.WithLoggerValue(ctx, "action", "build_dimensions")

	var inserted int64
	err := util.RunTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, util.MedReqTimeout)
		defer cancel()

		r, err := tx.Exec(ctx, `
			INSERT INTO dim_instrument (symbol)
			SELECT DISTINCT symbol FROM staging WHERE symbol IS NOT NULL
			ON CONFLICT (symbol) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("error while upserting instrument dimension: %w", err)
		}

		inserted = r.RowsAffected()
		util.Logf(ctx, logging.Debug, "inserted %d new instruments into dim_instrument", inserted)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpsertCalendar inserts the given calendar days, skipping dates already
// present. Attributes are derived in model.NewCalendarDay, so a re-derived
// day never conflicts with the stored one.
func (w *Warehouse) UpsertCalendar(ctx context.Context, days []model.CalendarDay) (int64, error) {
	ctx = util.WithLoggerValue(ctx, "action", "build_dimensions")

	var inserted int64
	err := util.RunTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, util.MedReqTimeout)
		defer cancel()

		for _, day := range days {
			r, err := tx.Exec(ctx, `
				INSERT INTO dim_time (date_key, date, year, month, week_start, day_of_week)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (date_key) DO NOTHING`,
				day.DateKey, day.Date, day.Year, day.Month, day.WeekStart, day.DayOfWeek)
			if err != nil {
				return fmt.Errorf("error while upserting calendar date %v: %w", day.Date, err)
			}
			inserted += r.RowsAffected()
		}

		util.Logf(ctx, logging.Debug, "inserted %d new dates into dim_time (%d staged)", inserted, len(days))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
