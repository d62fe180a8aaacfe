package file

import (
	"time"

	"github.com/google/uuid"
)

// Record is the metadata stored for one uploaded object.
type Record struct {
	ID            uuid.UUID `json:"id"`
	UID           string    `json:"uid"`
	UserStorageID string    `json:"userStorageId"`
	Bucket        string    `json:"bucket"`
	ObjectKey     string    `json:"objectKey"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	Size          *int64    `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewRecord carries the caller-provided fields of a record; ID and CreatedAt are assigned by the store.
type NewRecord struct {
	UID           string
	UserStorageID string
	Bucket        string
	ObjectKey     string
	OriginalName  string
	MimeType      string
	Size          *int64
}

// UploadTicket is returned when a client asks to upload a file.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	Bucket    string `json:"bucket"`
}

// DownloadTicket is returned when a client asks to download one of its files.
type DownloadTicket struct {
	DownloadURL  string `json:"downloadUrl"`
	ObjectKey    string `json:"objectKey"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
}
