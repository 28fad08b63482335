package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database"
	"blockdocs/internal/models"
)

// Repository provides access to the admin user storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new authentication repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) findOne(ctx context.Context, where string, arg any) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.DB.QueryRowContext(ctx, "SELECT id, username, email, password_hash FROM admin_users WHERE "+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("admin user")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding admin user: %w", err)
	}
	return &u, nil
}

// FindByUsername finds an admin by their username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByID finds an admin by their id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	return r.findOne(ctx, "id = ?", id)
}

// Create inserts a new admin user.
func (r *Repository) Create(ctx context.Context, u *models.AdminUser) error {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO admin_users (username, email, password_hash) VALUES (?, ?, ?)",
		u.Username, u.Email, u.PasswordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict(0, "admin %q already exists", u.Username)
		}
		return fmt.Errorf("error creating admin user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

// UpdatePassword replaces the password hash of an admin.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE admin_users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("error updating admin password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("admin user")
	}
	return nil
}
