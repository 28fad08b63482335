package models

import (
	"time"

	"blockdocs/internal/schema"
)

// Block is one unit of page content. Data is the stored payload whose
// shape depends on Type.
type Block struct {
	ID        int64       `json:"id"`
	PageID    int64       `json:"pageId"`
	Type      schema.Type `json:"type"`
	Order     int         `json:"order"`
	Data      string      `json:"data"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Payload decodes Data according to Type.
func (b Block) Payload() (schema.Payload, error) {
	return schema.Decode(b.Type, b.Data)
}
