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

package transform

import (
	"math"
	"sort"
	"time"

	"github.com/ajjensen13/marketdw/internal/model"
)

// SampleStdDev returns the sample standard deviation of xs. ok is false
// when xs holds fewer than two values, in which case the deviation is
// undefined (matching STDDEV_SAMP returning NULL).
//
// Sample, not population: divisor n-1. The warehouse reports volatility as
// dispersion over an incomplete week of observations, so the unbiased
// estimator is the one downstream consumers expect.
func SampleStdDev(xs []float64) (float64, bool) {
	n := len(xs)
	if n < 2 {
		return 0, false
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(n)

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}

	return math.Sqrt(ss / float64(n-1)), true
}

// WeeklyVolatilities groups daily changes by (instrument, week) and
// computes the sample standard deviation per group, skipping null changes.
// A group left with fewer than two observations yields a null volatility
// row, never zero. Output ordering is deterministic.
func WeeklyVolatilities(changes []model.WeeklyChange) []model.WeeklyVolatility {
	type group struct {
		instrumentKey int64
		weekStart     time.Time
	}

	byGroup := make(map[group][]float64)
	for _, c := range changes {
		g := group{instrumentKey: c.InstrumentKey, weekStart: c.WeekStart}
		if _, ok := byGroup[g]; !ok {
			byGroup[g] = nil
		}
		if c.DailyChange != nil {
			byGroup[g] = append(byGroup[g], *c.DailyChange)
		}
	}

	out := make([]model.WeeklyVolatility, 0, len(byGroup))
	for g, xs := range byGroup {
		row := model.WeeklyVolatility{InstrumentKey: g.instrumentKey, WeekStart: g.weekStart}
		if sd, ok := SampleStdDev(xs); ok {
			row.Volatility = &sd
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.Before(out[j].WeekStart)
		}
		return out[i].InstrumentKey < out[j].InstrumentKey
	})

	return out
}
