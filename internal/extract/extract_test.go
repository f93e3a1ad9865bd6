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
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLocate(t *testing.T) {
	path := writeFile(t, "date,symbol\n")

	got, err := Locate(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocateMissingFile(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestLocateDirectory(t *testing.T) {
	_, err := Locate(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestReadQuotes(t *testing.T) {
	path := writeFile(t, "date,symbol,open,high,low,close,volume\n2021-03-01,ACME,100,101,99,100,1000\n2021-03-02,ACME,100,111,99,110,1000\n")

	quotes, err := ReadQuotes(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "symbol", "open", "high", "low", "close", "volume"}, quotes.Header)
	require.Len(t, quotes.Records, 2)
	assert.Equal(t, []string{"2021-03-01", "ACME", "100", "101", "99", "100", "1000"}, quotes.Records[0])
}

func TestReadQuotesMissingFile(t *testing.T) {
	_, err := ReadQuotes(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestReadQuotesEmptyFile(t *testing.T) {
	_, err := ReadQuotes(writeFile(t, ""))
	assert.Error(t, err)
}

func TestReadQuotesRaggedRecord(t *testing.T) {
	_, err := ReadQuotes(writeFile(t, "date,symbol,open,high,low,close,volume\n2021-03-01,ACME\n"))
	assert.Error(t, err)
}
