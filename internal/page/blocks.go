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
	"blockdocs/internal/schema"
)

// BlockFields is a partial block update. Nil fields are left untouched.
type BlockFields struct {
	Type  *schema.Type
	Order *int
	Data  *string
}

const blockColumns = "SELECT id, page_id, type, position, data, created_at, updated_at FROM blocks"

func scanBlock(row interface{ Scan(...any) error }) (models.Block, error) {
	var b models.Block
	err := row.Scan(&b.ID, &b.PageID, &b.Type, &b.Order, &b.Data, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Ties on position fall back to insertion order.
func listBlocks(ctx context.Context, q querier, pageID int64) ([]models.Block, error) {
	rows, err := q.QueryContext(ctx, blockColumns+" WHERE page_id = ? ORDER BY position ASC, id ASC", pageID)
	if err != nil {
		return nil, fmt.Errorf("error listing blocks: %w", err)
	}
	defer rows.Close()

	blocks := []models.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func insertBlock(ctx context.Context, q querier, b models.Block, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO blocks (page_id, type, position, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		b.PageID, b.Type, b.Order, b.Data, now, now)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, apperr.NotFound("page")
		}
		return 0, fmt.Errorf("error creating block: %w", err)
	}
	return res.LastInsertId()
}

// ListBlocks returns the blocks of a page in render order.
func (r *Repository) ListBlocks(ctx context.Context, pageID int64) ([]models.Block, error) {
	return listBlocks(ctx, r.DB, pageID)
}

// FindBlock finds a block by its id.
func (r *Repository) FindBlock(ctx context.Context, id int64) (*models.Block, error) {
	b, err := scanBlock(r.DB.QueryRowContext(ctx, blockColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("block")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding block: %w", err)
	}
	return &b, nil
}

// CreateBlock adds a block to an existing page.
func (r *Repository) CreateBlock(ctx context.Context, b models.Block) (*models.Block, error) {
	id, err := insertBlock(ctx, r.DB, b, r.now())
	if err != nil {
		return nil, err
	}
	return r.FindBlock(ctx, id)
}

// NextBlockOrder returns the position after the last block of a page.
func (r *Repository) NextBlockOrder(ctx context.Context, pageID int64) (int, error) {
	var max sql.NullInt64
	err := r.DB.QueryRowContext(ctx, "SELECT MAX(position) FROM blocks WHERE page_id = ?", pageID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("error reading block order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// UpdateBlock applies a partial update to a block.
func (r *Repository) UpdateBlock(ctx context.Context, id int64, f BlockFields) (*models.Block, error) {
	sets := []string{"updated_at = ?"}
	args := []any{r.now()}
	if f.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *f.Type)
	}
	if f.Order != nil {
		sets = append(sets, "position = ?")
		args = append(args, *f.Order)
	}
	if f.Data != nil {
		sets = append(sets, "data = ?")
		args = append(args, *f.Data)
	}
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, "UPDATE blocks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("error updating block: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("block")
	}
	return r.FindBlock(ctx, id)
}

// DeleteBlock removes a single block.
func (r *Repository) DeleteBlock(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM blocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting block: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("block")
	}
	return nil
}

// ReplaceBlocks swaps the whole block list of a page in one transaction.
// Either every block is written or the previous list is kept.
func (r *Repository) ReplaceBlocks(ctx context.Context, pageID int64, blocks []models.Block) ([]models.Block, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE id = ?", pageID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error finding page: %w", err)
	}
	if exists == 0 {
		return nil, apperr.NotFound("page")
	}

	if err := r.replaceBlocks(ctx, tx, pageID, blocks); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE pages SET updated_at = ? WHERE id = ?", r.now(), pageID); err != nil {
		return nil, fmt.Errorf("error touching page: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return r.ListBlocks(ctx, pageID)
}

func (r *Repository) replaceBlocks(ctx context.Context, q querier, pageID int64, blocks []models.Block) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM blocks WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("error clearing blocks: %w", err)
	}
	now := r.now()
	for _, b := range blocks {
		b.PageID = pageID
		if _, err := insertBlock(ctx, q, b, now); err != nil {
			return err
		}
	}
	return nil
}
