package models

// AdminUser is an account allowed into the admin panel.
type AdminUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
