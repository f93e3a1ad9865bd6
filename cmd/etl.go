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

// etlCmd represents the etl command
var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Runs one warehouse load from the daily quote file",
	Long: `Runs one warehouse load end to end: stages the daily quote CSV,
gates it on data quality, extends the instrument and time dimensions,
rebuilds the daily facts and weekly volatility for the staged dates, and
logs the top volatility report.`,
	Run: func(cmd *cobra.Command, args []string) {
		lg, cleanup := logger()
		defer cleanup()

		ctx := util.WithLogger(context.Background(), lg)

		pool, cleanup, err := openPool(ctx)
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("failed to open database connection pool: %w", err)))
		}
		defer cleanup()

		p, err := newPipeline(pool)
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("failed to setup pipeline: %w", err)))
		}

		run, err := p.Run(ctx)
		if err != nil {
			panic(lg.ErrorErr(fmt.Errorf("pipeline run %s failed: %w", run.ID, err)))
		}

		lg.Defaultf("pipeline run %s completed", run.ID)
	},
}

func init() {
	rootCmd.AddCommand(etlCmd)
}
