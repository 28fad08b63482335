package models

import "time"

// Page is a publishable document composed of ordered blocks.
type Page struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	Icon        *string    `json:"icon"`
	EquipmentID *int64     `json:"equipmentId"`
	IsPublished bool       `json:"isPublished"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Equipment   *Equipment `json:"equipment,omitempty"`
	Blocks      []Block    `json:"blocks,omitempty"`
}

// PageFields carries a create or partial update of page metadata.
// Nil fields are left untouched on update.
type PageFields struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	EquipmentID *int64  `json:"equipmentId"`
	IsPublished *bool   `json:"isPublished"`
	Order       *int    `json:"order"`

	// ClearEquipment detaches the page from its equipment.
	ClearEquipment bool `json:"clearEquipment"`
}

// PageFilter narrows ListPages.
type PageFilter struct {
	Published   *bool
	ExcludeSlug string
	EquipmentID *int64

	// NewestFirst orders by creation time instead of display order.
	NewestFirst bool
}
