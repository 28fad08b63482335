package models

import "time"

// Equipment is a category used to group pages on the public site.
type Equipment struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	PageCount int       `json:"pageCount"`
}
