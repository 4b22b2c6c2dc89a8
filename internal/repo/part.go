package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/opificio-cmms/internal/models"
)

// ErrInsufficientStock is returned when a stock adjustment would take a part
// below zero quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// PartRepo persists spare parts inventory.
type PartRepo struct {
	DB *sql.DB
}

// NewPartRepo returns a new PartRepo.
func NewPartRepo(db *sql.DB) *PartRepo {
	return &PartRepo{DB: db}
}

const partColumns = "id, name, code, location, quantity, min_quantity, unit_cost, created_at"

// Count returns the total number of parts.
func (r *PartRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM parts").Scan(&n)
	return n, err
}

// List returns parts ordered by name.
func (r *PartRepo) List(ctx context.Context, limit, offset int) ([]models.Part, error) {
	query := `
		SELECT ` + partColumns + `
		FROM parts
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// GetByID returns one part by id, or nil if not found.
func (r *PartRepo) GetByID(ctx context.Context, id int) (*models.Part, error) {
	p, err := scanPart(r.DB.QueryRowContext(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new part and returns it with id set.
func (r *PartRepo) Create(ctx context.Context, p models.Part) (*models.Part, error) {
	query := `
		INSERT INTO parts (name, code, location, quantity, min_quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + partColumns + `
	`
	return scanPart(r.DB.QueryRowContext(ctx, query,
		p.Name, p.Code, p.Location, p.Quantity, p.MinQuantity, p.UnitCost))
}

// Update updates the editable fields for the given id.
func (r *PartRepo) Update(ctx context.Context, id int, p models.Part) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE parts SET name = $1, code = $2, location = $3, min_quantity = $4, unit_cost = $5 WHERE id = $6`,
		p.Name, p.Code, p.Location, p.MinQuantity, p.UnitCost, id,
	)
	return err
}

// Delete removes a part by id.
func (r *PartRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM parts WHERE id = $1`, id)
	return err
}

// AdjustQuantity applies a signed stock delta and returns the new quantity.
// The guard in the WHERE clause rejects adjustments that would go negative,
// which surfaces as ErrInsufficientStock.
func (r *PartRepo) AdjustQuantity(ctx context.Context, id, delta int) (int, error) {
	var qty int
	err := r.DB.QueryRowContext(ctx,
		`UPDATE parts SET quantity = quantity + $1 WHERE id = $2 AND quantity + $1 >= 0 RETURNING quantity`,
		delta, id,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		// Either the part does not exist or the delta would go below zero.
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return 0, existsErr
		}
		if exists {
			return 0, ErrInsufficientStock
		}
		return 0, sql.ErrNoRows
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (r *PartRepo) exists(ctx context.Context, id int) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM parts WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanPart(row rowScanner) (*models.Part, error) {
	p := &models.Part{}
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Location, &p.Quantity, &p.MinQuantity, &p.UnitCost, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
