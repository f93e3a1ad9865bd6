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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ajjensen13/marketdw/internal/model"
)

// Columns is the fixed input column order. Staging shares it.
var Columns = []string{"date", "symbol", "open", "high", "low", "close", "volume"}

const dateLayout = "2006-01-02"

// ErrSchemaMismatch reports an input header that does not match Columns.
var ErrSchemaMismatch = errors.New("input schema mismatch")

// ValidateHeader checks the header against the fixed column order. Header
// names compare case-insensitively; order matters.
func ValidateHeader(header []string) error {
	if len(header) != len(Columns) {
		return fmt.Errorf("expected %d columns, got %d: %w", len(Columns), len(header), ErrSchemaMismatch)
	}
	for i, want := range Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("column %d is %q, expected %q: %w", i+1, header[i], want, ErrSchemaMismatch)
		}
	}
	return nil
}

// StagingRows converts raw CSV records into typed staging rows. Blank cells
// become NULLs; a cell that is present but unparseable fails the whole
// batch, mirroring what a bulk COPY with typed columns would do.
func StagingRows(records [][]string) ([]model.StagingRow, error) {
	out := make([]model.StagingRow, len(records))
	for i, record := range records {
		row, err := stagingRow(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, err)
		}
		out[i] = row
	}
	return out, nil
}

func stagingRow(record []string) (model.StagingRow, error) {
	if len(record) != len(Columns) {
		return model.StagingRow{}, fmt.Errorf("expected %d fields, got %d: %w", len(Columns), len(record), ErrSchemaMismatch)
	}

	var row model.StagingRow
	var err error

	if row.Date, err = parseDate(record[0]); err != nil {
		return model.StagingRow{}, err
	}
	if s := strings.TrimSpace(record[1]); s != "" {
		row.Symbol = &s
	}
	if row.Open, err = parseFloat("open", record[2]); err != nil {
		return model.StagingRow{}, err
	}
	if row.High, err = parseFloat("high", record[3]); err != nil {
		return model.StagingRow{}, err
	}
	if row.Low, err = parseFloat("low", record[4]); err != nil {
		return model.StagingRow{}, err
	}
	if row.Close, err = parseFloat("close", record[5]); err != nil {
		return model.StagingRow{}, err
	}
	if row.Volume, err = parseInt("volume", record[6]); err != nil {
		return model.StagingRow{}, err
	}

	return row, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return &d, nil
}

func parseFloat(col, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s %q: %w", col, s, err)
	}
	return &f, nil
}

func parseInt(col, s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s %q: %w", col, s, err)
	}
	return &n, nil
}
