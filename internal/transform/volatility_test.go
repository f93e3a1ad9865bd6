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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajjensen13/marketdw/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		want   float64
		wantOk bool
	}{
		{"empty", nil, 0, false},
		{"single observation", []float64{0.5}, 0, false},
		// closes 100, 110, 99 give changes 0.10 and -0.10
		{"two symmetric changes", []float64{0.10, -0.10}, 0.1414, true},
		{"identical values", []float64{0.2, 0.2, 0.2}, 0, true},
		{"mixed", []float64{0.01, 0.03, -0.02, 0.02}, 0.02160, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SampleStdDev(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestSampleStdDevUsesSampleDivisor(t *testing.T) {
	got, ok := SampleStdDev([]float64{1, 3})
	require.True(t, ok)
	// population stddev would be 1
	assert.InDelta(t, math.Sqrt2, got, 1e-12)
}

func TestWeeklyVolatilities(t *testing.T) {
	week := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

	rows := WeeklyVolatilities([]model.WeeklyChange{
		{InstrumentKey: 1, WeekStart: week, DailyChange: nil},
		{InstrumentKey: 1, WeekStart: week, DailyChange: fptr(0.10)},
		{InstrumentKey: 1, WeekStart: week, DailyChange: fptr(-0.10)},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].InstrumentKey)
	assert.Equal(t, week, rows[0].WeekStart)
	require.NotNil(t, rows[0].Volatility)
	assert.InDelta(t, 0.1414, *rows[0].Volatility, 0.0001)
}

func TestWeeklyVolatilitiesNullUnderTwoObservations(t *testing.T) {
	week := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		changes []model.WeeklyChange
	}{
		{"single change", []model.WeeklyChange{
			{InstrumentKey: 1, WeekStart: week, DailyChange: fptr(0.10)},
		}},
		{"nulls do not count as observations", []model.WeeklyChange{
			{InstrumentKey: 1, WeekStart: week, DailyChange: nil},
			{InstrumentKey: 1, WeekStart: week, DailyChange: nil},
			{InstrumentKey: 1, WeekStart: week, DailyChange: fptr(0.10)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := WeeklyVolatilities(tt.changes)
			require.Len(t, rows, 1)
			assert.Nil(t, rows[0].Volatility, "volatility must be null, not zero")
		})
	}
}

func TestWeeklyVolatilitiesOrdering(t *testing.T) {
	week1 := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	rows := WeeklyVolatilities([]model.WeeklyChange{
		{InstrumentKey: 2, WeekStart: week2, DailyChange: fptr(0.01)},
		{InstrumentKey: 1, WeekStart: week2, DailyChange: fptr(0.01)},
		{InstrumentKey: 2, WeekStart: week1, DailyChange: fptr(0.01)},
		{InstrumentKey: 1, WeekStart: week1, DailyChange: fptr(0.01)},
	})

	require.Len(t, rows, 4)
	for i, want := range []struct {
		key  int64
		week time.Time
	}{
		{1, week1}, {2, week1}, {1, week2}, {2, week2},
	} {
		assert.Equal(t, want.key, rows[i].InstrumentKey)
		assert.Equal(t, want.week, rows[i].WeekStart)
	}
}
