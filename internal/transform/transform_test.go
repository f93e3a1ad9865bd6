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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{"exact match", []string{"date", "symbol", "open", "high", "low", "close", "volume"}, false},
		{"case insensitive", []string{"Date", "SYMBOL", "Open", "High", "Low", "Close", "Volume"}, false},
		{"surrounding whitespace", []string{" date", "symbol ", "open", "high", "low", "close", "volume"}, false},
		{"missing column", []string{"date", "symbol", "open", "high", "low", "close"}, true},
		{"extra column", []string{"date", "symbol", "open", "high", "low", "close", "volume", "adj_close"}, true},
		{"wrong order", []string{"symbol", "date", "open", "high", "low", "close", "volume"}, true},
		{"renamed column", []string{"date", "ticker", "open", "high", "low", "close", "volume"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemaMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStagingRows(t *testing.T) {
	rows, err := StagingRows([][]string{
		{"2021-03-01", "ACME", "100", "101.5", "99", "100.25", "12000"},
		{"", "", "", "", "", "", ""},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	full := rows[0]
	require.NotNil(t, full.Date)
	assert.Equal(t, time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC), *full.Date)
	require.NotNil(t, full.Symbol)
	assert.Equal(t, "ACME", *full.Symbol)
	require.NotNil(t, full.Close)
	assert.Equal(t, 100.25, *full.Close)
	require.NotNil(t, full.Volume)
	assert.Equal(t, int64(12000), *full.Volume)

	blank := rows[1]
	assert.Nil(t, blank.Date)
	assert.Nil(t, blank.Symbol)
	assert.Nil(t, blank.Open)
	assert.Nil(t, blank.High)
	assert.Nil(t, blank.Low)
	assert.Nil(t, blank.Close)
	assert.Nil(t, blank.Volume)
}

func TestStagingRowsRejectsUnparseableCells(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{"bad date", []string{"03/01/2021", "ACME", "100", "101", "99", "100", "1000"}},
		{"bad close", []string{"2021-03-01", "ACME", "100", "101", "99", "hundred", "1000"}},
		{"fractional volume", []string{"2021-03-01", "ACME", "100", "101", "99", "100", "1000.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StagingRows([][]string{tt.record})
			assert.Error(t, err)
		})
	}
}

func TestStagingRowsRejectsShortRecords(t *testing.T) {
	_, err := StagingRows([][]string{{"2021-03-01", "ACME", "100"}})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
