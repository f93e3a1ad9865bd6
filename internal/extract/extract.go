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

package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMissingInput reports an absent input file. Retrying cannot produce a
// file, so the pipeline treats it as permanent.
var ErrMissingInput = errors.New("input file missing")

// Quotes is the raw content of one input file: the header row and the data
// records, both untyped.
type Quotes struct {
	Header  []string
	Records [][]string
}

// Locate verifies that the input file exists and is a regular file. It
// fails fast with ErrMissingInput so the run never progresses to staging
// without data.
func Locate(path string) (string, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("no input file at %q: %w", path, ErrMissingInput)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat input file %q: %w", path, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("input path %q is a directory: %w", path, ErrMissingInput)
	}
	return path, nil
}

// ReadQuotes reads the whole CSV file at path. Every record must have the
// same field count as the header; a short or long record fails the read
// before anything is staged.
func ReadQuotes(path string) (Quotes, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Quotes{}, fmt.Errorf("no input file at %q: %w", path, ErrMissingInput)
		}
		return Quotes{}, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return Quotes{}, fmt.Errorf("input file %q is empty", path)
	}
	if err != nil {
		return Quotes{}, fmt.Errorf("failed to read header of %q: %w", path, err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Quotes{}, fmt.Errorf("failed to read record %d of %q: %w", len(records)+2, path, err)
		}
		records = append(records, record)
	}

	return Quotes{Header: header, Records: records}, nil
}
