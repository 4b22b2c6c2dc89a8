package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/opificio-cmms/internal/models"
)

// MeterRepo persists energy/usage meter readings. Readings are append-only.
type MeterRepo struct {
	DB *sql.DB
}

// NewMeterRepo returns a new MeterRepo.
func NewMeterRepo(db *sql.DB) *MeterRepo {
	return &MeterRepo{DB: db}
}

const meterColumns = "id, asset_id, meter, value, reading_at, created_at"

// Insert records a reading and returns it with id set.
func (r *MeterRepo) Insert(ctx context.Context, assetID int, meter string, value float64, readingAt time.Time) (*models.MeterReading, error) {
	query := `
		INSERT INTO meter_readings (asset_id, meter, value, reading_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + meterColumns + `
	`
	return scanReading(r.DB.QueryRowContext(ctx, query, assetID, meter, value, readingAt))
}

// ListByAsset returns readings for an asset, newest first. meter filters to
// one meter name when non-empty.
func (r *MeterRepo) ListByAsset(ctx context.Context, assetID int, meter string, limit int) ([]models.MeterReading, error) {
	query := `
		SELECT ` + meterColumns + `
		FROM meter_readings
		WHERE asset_id = $1 AND ($2 = '' OR meter = $2)
		ORDER BY reading_at DESC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, assetID, meter, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.MeterReading
	for rows.Next() {
		m, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// Latest returns the most recent reading per meter name for an asset.
func (r *MeterRepo) Latest(ctx context.Context, assetID int) ([]models.MeterReading, error) {
	query := `
		SELECT DISTINCT ON (meter) ` + meterColumns + `
		FROM meter_readings
		WHERE asset_id = $1
		ORDER BY meter, reading_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.MeterReading
	for rows.Next() {
		m, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func scanReading(row rowScanner) (*models.MeterReading, error) {
	m := &models.MeterReading{}
	err := row.Scan(&m.ID, &m.AssetID, &m.Meter, &m.Value, &m.ReadingAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}
