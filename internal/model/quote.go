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

package model

import (
	"time"
)

// StagingRow is one raw quote as landed in the staging relation. Columns
// are nullable on purpose: staging enforces nothing beyond column typing,
// the quality gate decides what is acceptable.
type StagingRow struct {
	Date   *time.Time `yaml:"date,omitempty" json:"date,omitempty"`
	Symbol *string    `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Open   *float64   `yaml:"open,omitempty" json:"open,omitempty"`
	High   *float64   `yaml:"high,omitempty" json:"high,omitempty"`
	Low    *float64   `yaml:"low,omitempty" json:"low,omitempty"`
	Close  *float64   `yaml:"close,omitempty" json:"close,omitempty"`
	Volume *int64     `yaml:"volume,omitempty" json:"volume,omitempty"`
}

// StagingStats summarizes the staging relation for the quality gate.
type StagingStats struct {
	Rows           int64
	NullDates      int64
	NullSymbols    int64
	NullCloses     int64
	DuplicatePairs int64
}

// WeeklyChange is one daily fact observation keyed by the week it falls in.
// DailyChange is nil for an instrument's first observed date.
type WeeklyChange struct {
	InstrumentKey int64
	WeekStart     time.Time
	DailyChange   *float64
}

// WeeklyVolatility is one row of the volatility_weekly relation.
// Volatility is nil when the week holds fewer than two non-null changes.
type WeeklyVolatility struct {
	InstrumentKey int64
	WeekStart     time.Time
	Volatility    *float64
}

// VolatilityRank is one entry of the top-N volatility report.
type VolatilityRank struct {
	Symbol        string
	AvgVolatility float64
}
