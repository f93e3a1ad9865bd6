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

// Package quality evaluates the staged batch before anything derived is
// written. A failed check is final for the run: retrying cannot fix bad
// input data, so quality errors are never retried.
package quality

import (
	"fmt"
	"strings"

	"github.com/ajjensen13/marketdw/internal/model"
)

// Error reports one or more failed data-quality checks.
type Error struct {
	Failures []string
}

func (e *Error) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "data quality check failed"
	}
	return fmt.Sprintf("data quality check failed: %s", strings.Join(e.Failures, "; "))
}

// Gate checks the staged batch against the expected row count and the
// required columns (date, symbol, close must never be null). All failures
// are collected so the log shows the full picture, not just the first one.
func Gate(stats model.StagingStats, expectedRows int64) error {
	var failures []string

	if stats.Rows != expectedRows {
		failures = append(failures, fmt.Sprintf("staging holds %d rows, expected %d", stats.Rows, expectedRows))
	}
	if stats.NullDates > 0 {
		failures = append(failures, fmt.Sprintf("%d rows with null date", stats.NullDates))
	}
	if stats.NullSymbols > 0 {
		failures = append(failures, fmt.Sprintf("%d rows with null symbol", stats.NullSymbols))
	}
	if stats.NullCloses > 0 {
		failures = append(failures, fmt.Sprintf("%d rows with null close", stats.NullCloses))
	}

	if len(failures) > 0 {
		return &Error{Failures: failures}
	}
	return nil
}

// Duplicates rejects a batch holding more than one row per (symbol, date)
// pair, which would break the one-fact-per-pair invariant downstream.
func Duplicates(stats model.StagingStats) error {
	if stats.DuplicatePairs > 0 {
		return &Error{Failures: []string{fmt.Sprintf("%d duplicate (symbol, date) pairs in staging", stats.DuplicatePairs)}}
	}
	return nil
}
