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
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajjensen13/marketdw/internal/util"
)

// reportCmd re-reads the current volatility rankings without running a
// load. Useful after the fact when the pipeline's own report has scrolled
// out of the logs.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Prints the current top volatility rankings",
	Run: func(cmd *cobra.Command, args []string) {
		lg, cleanup := logger()
		defer cleanup()

		ctx := util.WithLogger(context.Background(), lg)

		cfg, err := provideAppConfig()
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("failed to load application config: %w", err)))
		}

		n := cfg.ReportTopN
		if n <= 0 {
			n = 1
		}

		pool, cleanup, err := openPool(ctx)
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("failed to open database connection pool: %w", err)))
		}
		defer cleanup()

		ranks, err := warehouse(pool).TopVolatile(ctx, n)
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("failed to query volatility rankings: %w", err)))
		}

		if len(ranks) == 0 {
			lg.Defaultf("no volatility data available")
			return
		}

		for i, r := range ranks {
			lg.Defaultf("volatility rank %d: %s (%.4f)", i+1, r.Symbol, r.AvgVolatility)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
