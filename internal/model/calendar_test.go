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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, 20210301, DateKey(date(2021, time.March, 1)))
	assert.Equal(t, 20211231, DateKey(date(2021, time.December, 31)))
	assert.Equal(t, 20200229, DateKey(date(2020, time.February, 29)))
}

func TestWeekStart(t *testing.T) {
	monday := date(2021, time.March, 1)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday is its own week start", monday, monday},
		{"wednesday", date(2021, time.March, 3), monday},
		{"saturday", date(2021, time.March, 6), monday},
		{"sunday belongs to the preceding monday", date(2021, time.March, 7), monday},
		{"next monday starts a new week", date(2021, time.March, 8), date(2021, time.March, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestWeekStartDiscardsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2021, time.March, 3, 23, 59, 0, 0, loc)
	assert.Equal(t, date(2021, time.March, 1), WeekStart(in))
}

func TestNewCalendarDay(t *testing.T) {
	day := NewCalendarDay(time.Date(2021, time.March, 7, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, CalendarDay{
		DateKey:   20210307,
		Date:      date(2021, time.March, 7),
		Year:      2021,
		Month:     3,
		WeekStart: date(2021, time.March, 1),
		DayOfWeek: 0, // sunday
	}, day)
}

func TestNewCalendarDayIsDeterministic(t *testing.T) {
	a := NewCalendarDay(date(2021, time.March, 2))
	b := NewCalendarDay(time.Date(2021, time.March, 2, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, a, b)
}
