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
	"net/url"

	"github.com/ajjensen13/config"
	"github.com/ajjensen13/gke"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ajjensen13/marketdw/internal/db"
	"github.com/ajjensen13/marketdw/internal/pipeline"
)

const (
	dbSecretName  = "marketdw-db-secret.json"
	appConfigName = "marketdw-config-cm.json"
)

type appConfig struct {
	InputPath                string  `json:"input_path"`
	ExpectedRowCount         int64   `json:"expected_row_count"`
	VolatilityAlertThreshold float64 `json:"volatility_alert_threshold"`
	ReportTopN               int     `json:"report_top_n"`
	DataSourceName           string  `json:"data_source_name"`
	MigrationSourceURL       string  `json:"migration_source_url"`
}

func provideAppConfig() (*appConfig, error) {
	var result appConfig
	err := config.InterfaceJson(appConfigName, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func provideDbSecrets() (*url.Userinfo, error) {
	ui, err := config.Userinfo(dbSecretName)
	if err != nil {
		return nil, err
	}
	return ui, nil
}

func provideDataSourceName(user *url.Userinfo, cfg *appConfig) (dsn *url.URL, err error) {
	dsn, err = url.Parse(cfg.DataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data source name: %w", err)
	}
	dsn.User = user

	return dsn, nil
}

func provideDbConnPool(ctx context.Context, dsn *url.URL) (ret *pgxpool.Pool, cleanup func(), err error) {
	pool, err := pgxpool.Connect(ctx, dsn.String())
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open database connection pool: %w", err)
	}

	return pool, pool.Close, nil
}

func provideLogger() (lg gke.Logger, cleanup func()) {
	lg, cleanup, err := gke.NewLogger(context.Background())
	if err != nil {
		panic(err)
	}

	gke.LogEnv(lg)
	gke.LogMetadata(lg)

	return lg, cleanup
}

func provideWarehouse(pool *pgxpool.Pool) *db.Warehouse {
	return db.New(pool)
}

func providePipelineConfig(cfg *appConfig) pipeline.Config {
	return pipeline.Config{
		InputPath:      cfg.InputPath,
		ExpectedRows:   cfg.ExpectedRowCount,
		TopN:           cfg.ReportTopN,
		AlertThreshold: cfg.VolatilityAlertThreshold,
	}
}

func provideMigrationSourceURL(cfg *appConfig) string {
	return cfg.MigrationSourceURL
}

func provideMigrator(lg gke.Logger, databaseURL *url.URL, sourceURL string) (m *migrate.Migrate, err error) {
	m, err = migrate.New(sourceURL, databaseURL.String())
	if err != nil {
		return nil, err
	}
	m.Log = migrationLogger{lg}
	return m, err
}

type migrationLogger struct {
	gke.Logger
}

func (m migrationLogger) Printf(format string, v ...interface{}) {
	m.Defaultf(format, v...)
}

func (m migrationLogger) Verbose() bool {
	return false
}
