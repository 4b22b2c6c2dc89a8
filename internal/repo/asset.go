package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/opificio-cmms/internal/models"
)

// AssetRepo persists industrial assets.
type AssetRepo struct {
	DB *sql.DB
}

// NewAssetRepo returns a new AssetRepo.
func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{DB: db}
}

// Count returns the total number of assets.
func (r *AssetRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets").Scan(&n)
	return n, err
}

// List returns assets, most recent first. limit/offset for pagination.
func (r *AssetRepo) List(ctx context.Context, limit, offset int) ([]models.Asset, error) {
	query := `
		SELECT id, name, code, location, category, status, install_date, notes, created_at
		FROM assets
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// GetByID returns one asset by id, or nil if not found.
func (r *AssetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	query := `
		SELECT id, name, code, location, category, status, install_date, notes, created_at
		FROM assets
		WHERE id = $1
	`
	row := r.DB.QueryRowContext(ctx, query, id)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new asset and returns it with id set.
func (r *AssetRepo) Create(ctx context.Context, a models.Asset) (*models.Asset, error) {
	query := `
		INSERT INTO assets (name, code, location, category, status, install_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, code, location, category, status, install_date, notes, created_at
	`
	row := r.DB.QueryRowContext(ctx, query,
		a.Name, a.Code, a.Location, a.Category, a.Status, a.InstallDate, a.Notes)
	return scanAsset(row)
}

// Update updates all editable fields for the given id.
func (r *AssetRepo) Update(ctx context.Context, id int, a models.Asset) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE assets SET name = $1, code = $2, location = $3, category = $4, status = $5, install_date = $6, notes = $7 WHERE id = $8`,
		a.Name, a.Code, a.Location, a.Category, a.Status, a.InstallDate, a.Notes, id,
	)
	return err
}

// Delete removes an asset by id.
func (r *AssetRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	a := &models.Asset{}
	var installDate sql.NullTime
	err := row.Scan(&a.ID, &a.Name, &a.Code, &a.Location, &a.Category, &a.Status, &installDate, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.InstallDate = timePtr(installDate)
	return a, nil
}

// timePtr is a small helper for nullable timestamps.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
