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

	"github.com/ajjensen13/marketdw/internal/util"
)

const (
	clearDailyFactsSQL = `
		DELETE FROM fact_daily_quote
		WHERE date_key IN (
			SELECT t.date_key
			FROM dim_time t
			WHERE t.date IN (SELECT DISTINCT date FROM staging WHERE date IS NOT NULL)
		)`

	insertDailyFactsSQL = `
		INSERT INTO fact_daily_quote
			(date_key, instrument_key, open, high, low, close, volume, daily_change, daily_range)
		SELECT
			t.date_key,
			i.instrument_key,
			s.open,
			s.high,
			s.low,
			s.close,
			s.volume,
			(s.close - LAG(s.close) OVER w) / NULLIF(LAG(s.close) OVER w, 0),
			s.high - s.low
		FROM staging s
		JOIN dim_instrument i ON i.symbol = s.symbol
		JOIN dim_time t ON t.date = s.date
		WINDOW w AS (PARTITION BY s.symbol ORDER BY s.date)`
)

// ReplaceDailyFacts rebuilds fact_daily_quote for every date present in the
// staged batch: delete-then-insert inside one transaction, so a re-run with
// the same batch converges on the same fact rows.
//
// daily_change is the fractional change from the instrument's previous
// staged close (NULL on the first observation and on a zero previous
// close); daily_range is high - low.
func (w *Warehouse) ReplaceDailyFacts(ctx context.Context) (int64, error) {
	ctx = util.WithLoggerValue(ctx, "action", "build_facts")

	var inserted int64
	err := util.RunTx(ctx, w.pool, func(ctx context.Context, tx pgx.Tx) error {
		ctx, cancel := context.WithTimeout(ctx, util.LongReqTimeout)
		defer cancel()

		r, err := tx.Exec(ctx, clearDailyFactsSQL)
		if err != nil {
			return fmt.Errorf("error while clearing facts for staged dates: %w", err)
		}
		util.Logf(ctx, logging.Debug, "cleared %d fact rows for staged dates", r.RowsAffected())

		r, err = tx.Exec(ctx, insertDailyFactsSQL)
		if err != nil {
			return fmt.Errorf("error while building daily facts: %w", err)
		}

		inserted = r.RowsAffected()
		util.Logf(ctx, logging.Debug, "inserted %d daily fact rows", inserted)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
