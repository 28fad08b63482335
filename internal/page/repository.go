package page

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database"
	"blockdocs/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides access to the page and block storage.
type Repository struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewRepository creates a new page repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db, Now: time.Now}
}

func (r *Repository) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

const pageColumns = `SELECT p.id, p.title, p.slug, p.description, p.icon, p.equipment_id, p.is_published, p.position, p.created_at, p.updated_at,
       e.id, e.name, e.icon, e.color, e.position
FROM pages p
LEFT JOIN equipments e ON e.id = p.equipment_id`

func scanPage(row interface{ Scan(...any) error }) (models.Page, error) {
	var (
		p       models.Page
		desc    sql.NullString
		icon    sql.NullString
		equipID sql.NullInt64
		eID     sql.NullInt64
		eName   sql.NullString
		eIcon   sql.NullString
		eColor  sql.NullString
		eOrder  sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &desc, &icon, &equipID, &p.IsPublished, &p.Order, &p.CreatedAt, &p.UpdatedAt,
		&eID, &eName, &eIcon, &eColor, &eOrder)
	if err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	if icon.Valid {
		p.Icon = &icon.String
	}
	if equipID.Valid {
		p.EquipmentID = &equipID.Int64
	}
	if eID.Valid {
		p.Equipment = &models.Equipment{
			ID:    eID.Int64,
			Name:  eName.String,
			Icon:  eIcon.String,
			Color: eColor.String,
			Order: int(eOrder.Int64),
		}
	}
	return p, nil
}

func findPage(ctx context.Context, q querier, where string, args ...any) (*models.Page, error) {
	p, err := scanPage(q.QueryRowContext(ctx, pageColumns+" WHERE "+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("page")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding page: %w", err)
	}
	blocks, err := listBlocks(ctx, q, p.ID)
	if err != nil {
		return nil, err
	}
	p.Blocks = blocks
	return &p, nil
}

// FindByID returns a page with its blocks ordered by position.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Page, error) {
	return findPage(ctx, r.DB, "p.id = ?", id)
}

// FindBySlug returns the page with the given slug. With publishedOnly an
// unpublished page is reported exactly like a missing one.
func (r *Repository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Page, error) {
	if publishedOnly {
		return findPage(ctx, r.DB, "p.slug = ? AND p.is_published = 1", slug)
	}
	return findPage(ctx, r.DB, "p.slug = ?", slug)
}

// List lists pages without their blocks.
func (r *Repository) List(ctx context.Context, filter models.PageFilter) ([]models.Page, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Published != nil {
		conds = append(conds, "p.is_published = ?")
		args = append(args, *filter.Published)
	}
	if filter.ExcludeSlug != "" {
		conds = append(conds, "p.slug <> ?")
		args = append(args, filter.ExcludeSlug)
	}
	if filter.EquipmentID != nil {
		conds = append(conds, "p.equipment_id = ?")
		args = append(args, *filter.EquipmentID)
	}

	query := pageColumns
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY p.created_at DESC, p.id DESC"
	} else {
		query += " ORDER BY p.position ASC, p.id ASC"
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing pages: %w", err)
	}
	defer rows.Close()

	pages := []models.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Create inserts a page. Order defaults to 0 and the page starts unpublished.
func (r *Repository) Create(ctx context.Context, f models.PageFields) (*models.Page, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := r.insertPage(ctx, tx, f)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) insertPage(ctx context.Context, q querier, f models.PageFields) (int64, error) {
	title, slug := deref(f.Title), deref(f.Slug)
	if strings.TrimSpace(title) == "" {
		return 0, apperr.Validation("title is required")
	}
	if strings.TrimSpace(slug) == "" {
		return 0, apperr.Validation("slug is required")
	}
	order := 0
	if f.Order != nil {
		order = *f.Order
	}
	published := false
	if f.IsPublished != nil {
		published = *f.IsPublished
	}

	now := r.now()
	res, err := q.ExecContext(ctx,
		"INSERT INTO pages (title, slug, description, icon, equipment_id, is_published, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		title, strings.TrimSpace(slug), f.Description, f.Icon, f.EquipmentID, published, order, now, now)
	if err != nil {
		return 0, pageWriteError("creating", slug, err)
	}
	return res.LastInsertId()
}

func pageWriteError(action, slug string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperr.Conflict(0, "slug %q is already in use", slug)
	case database.IsForeignKeyViolation(err):
		return apperr.Validation("equipment does not exist")
	}
	return fmt.Errorf("error %s page: %w", action, err)
}

// Update applies a partial metadata update. Blocks are not touched.
func (r *Repository) Update(ctx context.Context, id int64, f models.PageFields) (*models.Page, error) {
	if err := r.updatePage(ctx, r.DB, id, f); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) updatePage(ctx context.Context, q querier, id int64, f models.PageFields) error {
	var (
		sets []string
		args []any
	)
	if f.Title != nil {
		if strings.TrimSpace(*f.Title) == "" {
			return apperr.Validation("title is required")
		}
		sets = append(sets, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Slug != nil {
		if strings.TrimSpace(*f.Slug) == "" {
			return apperr.Validation("slug is required")
		}
		sets = append(sets, "slug = ?")
		args = append(args, strings.TrimSpace(*f.Slug))
	}
	if f.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *f.Description)
	}
	if f.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *f.Icon)
	}
	if f.ClearEquipment {
		sets = append(sets, "equipment_id = NULL")
	} else if f.EquipmentID != nil {
		sets = append(sets, "equipment_id = ?")
		args = append(args, *f.EquipmentID)
	}
	if f.IsPublished != nil {
		sets = append(sets, "is_published = ?")
		args = append(args, *f.IsPublished)
	}
	if f.Order != nil {
		sets = append(sets, "position = ?")
		args = append(args, *f.Order)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	res, err := q.ExecContext(ctx, "UPDATE pages SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return pageWriteError("updating", deref(f.Slug), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("page")
	}
	return nil
}

// Delete removes a page together with all of its blocks.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE page_id = ?", id); err != nil {
		return fmt.Errorf("error deleting blocks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("page")
	}
	return tx.Commit()
}

// CountByEquipment counts the pages that reference an equipment.
func (r *Repository) CountByEquipment(ctx context.Context, equipmentID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE equipment_id = ?", equipmentID).Scan(&n)
	return n, err
}

// SavePage updates metadata and replaces the block list in one transaction.
func (r *Repository) SavePage(ctx context.Context, id int64, f models.PageFields, blocks []models.Block) (*models.Page, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.updatePage(ctx, tx, id, f); err != nil {
		return nil, err
	}
	if err := r.replaceBlocks(ctx, tx, id, blocks); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Duplicate copies a page and all of its blocks in one transaction. The
// copy gets a fresh slug, the requested equipment and starts unpublished.
func (r *Repository) Duplicate(ctx context.Context, id int64, equipmentID *int64) (*models.Page, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	src, err := findPage(ctx, tx, "p.id = ?", id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	title := src.Title + " (Copy)"
	slug := fmt.Sprintf("%s-copy-%d", src.Slug, now.UnixMilli())
	published := false
	order := src.Order

	newID, err := r.insertPage(ctx, tx, models.PageFields{
		Title:       &title,
		Slug:        &slug,
		Description: src.Description,
		Icon:        src.Icon,
		EquipmentID: equipmentID,
		IsPublished: &published,
		Order:       &order,
	})
	if err != nil {
		return nil, err
	}

	for _, b := range src.Blocks {
		b.PageID = newID
		if _, err := insertBlock(ctx, tx, b, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return r.FindByID(ctx, newID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
