package asset

import "time"

// Asset tracks metadata for a file stored in the object store. StorageKey is
// the opaque object key; uploads happen directly against a presigned URL and
// the client confirms with MarkUploaded.
type Asset struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	StorageKey string    `json:"-"`
	UserID     string    `json:"user_id"`
	IsPublic   bool      `json:"is_public"`
	IsUploaded bool      `json:"is_uploaded"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateInput contains the payload required to register a new asset.
type CreateInput struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	IsPublic bool   `json:"is_public"`
}

// CreateOutput pairs the stored asset with the presigned upload URL.
type CreateOutput struct {
	Asset     *Asset `json:"asset"`
	UploadURL string `json:"upload_url"`
}
