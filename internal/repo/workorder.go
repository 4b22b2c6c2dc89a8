package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/opificio-cmms/internal/models"
)

// WorkOrderRepo persists work orders.
type WorkOrderRepo struct {
	DB *sql.DB
}

// NewWorkOrderRepo returns a new WorkOrderRepo.
func NewWorkOrderRepo(db *sql.DB) *WorkOrderRepo {
	return &WorkOrderRepo{DB: db}
}

const workOrderColumns = "id, title, description, asset_id, priority, category, status, origin_schedule_id, due_date, created_at"

// WorkOrderFilter narrows List results. Zero values mean "no filter".
type WorkOrderFilter struct {
	Status  string
	AssetID int
}

// Count returns the number of work orders matching the filter.
func (r *WorkOrderRepo) Count(ctx context.Context, f WorkOrderFilter) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_orders WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR asset_id = $2)`,
		f.Status, f.AssetID,
	).Scan(&n)
	return n, err
}

// List returns work orders matching the filter, most recent first.
func (r *WorkOrderRepo) List(ctx context.Context, f WorkOrderFilter, limit, offset int) ([]models.WorkOrder, error) {
	query := `
		SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR asset_id = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, f.Status, f.AssetID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *wo)
	}
	return list, rows.Err()
}

// GetByID returns one work order by id, or nil if not found.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id int) (*models.WorkOrder, error) {
	query := `
		SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE id = $1
	`
	wo, err := scanWorkOrder(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// Create inserts a new work order and returns it with id set.
func (r *WorkOrderRepo) Create(ctx context.Context, wo models.WorkOrder) (*models.WorkOrder, error) {
	query := `
		INSERT INTO work_orders (title, description, asset_id, priority, category, status, origin_schedule_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + workOrderColumns + `
	`
	return scanWorkOrder(r.DB.QueryRowContext(ctx, query,
		wo.Title, wo.Description, wo.AssetID, wo.Priority, wo.Category, wo.Status,
		nullInt(wo.OriginScheduleID), nullTime(wo.DueDate)))
}

// Update updates title, description, priority, category and due date.
func (r *WorkOrderRepo) Update(ctx context.Context, id int, wo models.WorkOrder) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE work_orders SET title = $1, description = $2, priority = $3, category = $4, due_date = $5 WHERE id = $6`,
		wo.Title, wo.Description, wo.Priority, wo.Category, nullTime(wo.DueDate), id,
	)
	return err
}

// UpdateStatus sets the status for the given id.
func (r *WorkOrderRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE work_orders SET status = $1 WHERE id = $2`, status, id)
	return err
}

// CountByStatus returns a status -> count map for dashboard summaries.
func (r *WorkOrderRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM work_orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanWorkOrder(row rowScanner) (*models.WorkOrder, error) {
	wo := &models.WorkOrder{}
	var origin sql.NullInt64
	var due sql.NullTime
	err := row.Scan(&wo.ID, &wo.Title, &wo.Description, &wo.AssetID, &wo.Priority,
		&wo.Category, &wo.Status, &origin, &due, &wo.CreatedAt)
	if err != nil {
		return nil, err
	}
	if origin.Valid {
		v := int(origin.Int64)
		wo.OriginScheduleID = &v
	}
	wo.DueDate = timePtr(due)
	return wo, nil
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
