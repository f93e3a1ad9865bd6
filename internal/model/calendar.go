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

// CalendarDay is one row of the dim_time relation. Every attribute is a
// pure function of Date, so re-deriving a day always produces the same row.
type CalendarDay struct {
	DateKey   int
	Date      time.Time
	Year      int
	Month     int
	WeekStart time.Time
	DayOfWeek int
}

// NewCalendarDay derives the calendar attributes for d. The time of day and
// location are discarded first so equal dates map to equal rows.
func NewCalendarDay(d time.Time) CalendarDay {
	d = truncateToDate(d)
	return CalendarDay{
		DateKey:   DateKey(d),
		Date:      d,
		Year:      d.Year(),
		Month:     int(d.Month()),
		WeekStart: WeekStart(d),
		DayOfWeek: int(d.Weekday()),
	}
}

// DateKey returns the surrogate key for a calendar date as yyyymmdd.
func DateKey(d time.Time) int {
	return d.Year()*10000 + int(d.Month())*100 + d.Day()
}

// WeekStart returns the Monday on or before d, matching the week boundary
// of DATE_TRUNC('week', ...) in the warehouse SQL.
func WeekStart(d time.Time) time.Time {
	d = truncateToDate(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func truncateToDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
