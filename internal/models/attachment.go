package models

import "time"

// Attachment represents an uploaded file.
type Attachment struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	UniqueFilename string    `json:"uniqueFilename"`
	MimeType       string    `json:"mimeType"`
	Size           int64     `json:"size"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"createdAt"`
}
