package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-etl/internal/loader"
	"github.com/namefreezers/weather-etl/internal/table"
)

const observationsTable = "weather_observations"

const createObservationsQuery = `
        CREATE TABLE IF NOT EXISTS weather_observations (
            position          INTEGER          NOT NULL,
            city_name         TEXT,
            country           TEXT,
            temperature_c     DOUBLE PRECISION,
            humidity          BIGINT,
            weather_condition TEXT             NOT NULL,
            wind_speed        DOUBLE PRECISION,
            extracted_at      TEXT             NOT NULL
        );
    `

const deleteObservationsQuery = `DELETE FROM weather_observations;`

const insertObservationQuery = `
        INSERT INTO weather_observations
            (position, city_name, country, temperature_c, humidity, weather_condition, wind_speed, extracted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `

// ObservationRepository stores the latest run's rows in Postgres.
type ObservationRepository interface {
	// ReplaceAll swaps the stored rows for rows in one transaction.
	ReplaceAll(ctx context.Context, rows []table.Row) error
}

type pgRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewObservationRepository(db *sqlx.DB, logger *zap.Logger) ObservationRepository {
	return &pgRepo{db: db, logger: logger}
}

func (r *pgRepo) ReplaceAll(ctx context.Context, rows []table.Row) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				r.logger.Warn("rollback failed", zap.Error(rerr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, createObservationsQuery); err != nil {
		r.logger.Error("failed to ensure observations table", zap.Error(err))
		return fmt.Errorf("create table: %w", err)
	}
	if _, err = tx.ExecContext(ctx, deleteObservationsQuery); err != nil {
		r.logger.Error("failed to clear observations", zap.Error(err))
		return fmt.Errorf("delete rows: %w", err)
	}
	for i, row := range rows {
		_, err = tx.ExecContext(ctx, insertObservationQuery,
			i, row.CityName, row.Country, row.TemperatureC, row.Humidity,
			row.WeatherCondition, row.WindSpeed, row.ExtractedAt,
		)
		if err != nil {
			r.logger.Error("failed to insert observation", zap.Int("position", i), zap.Error(err))
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		r.logger.Error("failed to commit observations", zap.Error(err))
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("observations replaced", zap.Int("count", len(rows)))
	return nil
}

// Sink adapts an ObservationRepository to loader.Sink.
type Sink struct {
	Repo ObservationRepository
}

func (s Sink) Format() string      { return loader.FormatPostgres }
func (s Sink) Destination() string { return observationsTable }

func (s Sink) Write(ctx context.Context, tbl *table.Table) error {
	return s.Repo.ReplaceAll(ctx, tbl.Rows)
}
