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
	"testing"

	"github.com/stretchr/testify/assert"
)

// The fact build runs entirely in SQL; these pin the expressions the
// warehouse depends on so an edit cannot silently change their meaning.

func TestDailyChangeDefinition(t *testing.T) {
	// fractional change from the previous close, null on the first
	// observation and on a zero previous close
	assert.Contains(t, insertDailyFactsSQL, "(s.close - LAG(s.close) OVER w) / NULLIF(LAG(s.close) OVER w, 0)")
	assert.Contains(t, insertDailyFactsSQL, "WINDOW w AS (PARTITION BY s.symbol ORDER BY s.date)")
}

func TestDailyRangeDefinition(t *testing.T) {
	assert.Contains(t, insertDailyFactsSQL, "s.high - s.low")
}

func TestFactRebuildIsScopedToStagedDates(t *testing.T) {
	assert.Contains(t, clearDailyFactsSQL, "DELETE FROM fact_daily_quote")
	assert.Contains(t, clearDailyFactsSQL, "SELECT DISTINCT date FROM staging WHERE date IS NOT NULL")
	assert.Contains(t, insertDailyFactsSQL, "JOIN dim_instrument i ON i.symbol = s.symbol")
	assert.Contains(t, insertDailyFactsSQL, "JOIN dim_time t ON t.date = s.date")
}
