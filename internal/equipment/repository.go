package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database"
	"blockdocs/internal/models"
)

const (
	defaultIcon  = "⚙️"
	defaultColor = "blue"
)

// Repository provides access to the equipment storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new equipment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Fields is the editable part of an equipment row.
type Fields struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (f *Fields) normalize() error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return apperr.Validation("name is required")
	}
	if f.Icon == "" {
		f.Icon = defaultIcon
	}
	if f.Color == "" {
		f.Color = defaultColor
	}
	return nil
}

const selectColumns = `SELECT e.id, e.name, e.icon, e.color, e.position, e.created_at,
       (SELECT COUNT(*) FROM pages WHERE equipment_id = e.id) AS page_count
FROM equipments e`

func scan(row interface{ Scan(...any) error }) (models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Icon, &e.Color, &e.Order, &e.CreatedAt, &e.PageCount)
	return e, err
}

// List lists all equipment in display order, each with its page count.
func (r *Repository) List(ctx context.Context) ([]models.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx, selectColumns+" ORDER BY e.position ASC, e.id ASC")
	if err != nil {
		return nil, fmt.Errorf("error listing equipment: %w", err)
	}
	defer rows.Close()

	equipments := []models.Equipment{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		equipments = append(equipments, e)
	}
	return equipments, rows.Err()
}

// FindByID finds an equipment by its id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Equipment, error) {
	e, err := scan(r.DB.QueryRowContext(ctx, selectColumns+" WHERE e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("equipment")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding equipment: %w", err)
	}
	return &e, nil
}

// Create appends a new equipment at the end of the display order.
func (r *Repository) Create(ctx context.Context, f Fields) (*models.Equipment, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM equipments").Scan(&count); err != nil {
		return nil, fmt.Errorf("error counting equipment: %w", err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO equipments (name, icon, color, position) VALUES (?, ?, ?, ?)", f.Name, f.Icon, f.Color, count)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(0, "equipment name %q already exists", f.Name)
		}
		return nil, fmt.Errorf("error creating equipment: %w", err)
	}
	id, _ := res.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update replaces the editable fields of an equipment.
func (r *Repository) Update(ctx context.Context, id int64, f Fields) (*models.Equipment, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}

	res, err := r.DB.ExecContext(ctx, "UPDATE equipments SET name = ?, icon = ?, color = ? WHERE id = ?", f.Name, f.Icon, f.Color, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(0, "equipment name %q already exists", f.Name)
		}
		return nil, fmt.Errorf("error updating equipment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("equipment")
	}
	return r.FindByID(ctx, id)
}

// Delete removes an equipment. It is refused while pages still reference it.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var pages int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE equipment_id = ?", id).Scan(&pages); err != nil {
		return fmt.Errorf("error counting pages: %w", err)
	}
	if pages > 0 {
		return apperr.Conflict(pages, "cannot delete equipment: %d page(s) still reference it", pages)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM equipments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting equipment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("equipment")
	}
	return tx.Commit()
}

// Reorder assigns positions following the order of ids.
func (r *Repository) Reorder(ctx context.Context, ids []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for pos, id := range ids {
		res, err := tx.ExecContext(ctx, "UPDATE equipments SET position = ? WHERE id = ?", pos, id)
		if err != nil {
			return fmt.Errorf("error reordering equipment: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound(fmt.Sprintf("equipment %d", id))
		}
	}
	return tx.Commit()
}
