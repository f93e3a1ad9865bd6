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

package quality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajjensen13/marketdw/internal/model"
)

func TestGate(t *testing.T) {
	err := Gate(model.StagingStats{Rows: 3}, 3)
	assert.NoError(t, err)
}

func TestGateRowCountMismatch(t *testing.T) {
	tests := []struct {
		name     string
		rows     int64
		expected int64
	}{
		{"short batch", 2, 3},
		{"padded batch", 4, 3},
		{"empty staging", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Gate(model.StagingStats{Rows: tt.rows}, tt.expected)
			var qErr *Error
			require.True(t, errors.As(err, &qErr))
			assert.Len(t, qErr.Failures, 1)
		})
	}
}

func TestGateNullRequiredColumns(t *testing.T) {
	err := Gate(model.StagingStats{Rows: 3, NullCloses: 1}, 3)

	var qErr *Error
	require.True(t, errors.As(err, &qErr))
	assert.Contains(t, err.Error(), "null close")
}

func TestGateCollectsAllFailures(t *testing.T) {
	err := Gate(model.StagingStats{Rows: 2, NullDates: 1, NullSymbols: 1, NullCloses: 2}, 3)

	var qErr *Error
	require.True(t, errors.As(err, &qErr))
	assert.Len(t, qErr.Failures, 4)
}

func TestDuplicates(t *testing.T) {
	assert.NoError(t, Duplicates(model.StagingStats{Rows: 3}))

	err := Duplicates(model.StagingStats{Rows: 3, DuplicatePairs: 1})
	var qErr *Error
	require.True(t, errors.As(err, &qErr))
	assert.Contains(t, err.Error(), "duplicate")
}
