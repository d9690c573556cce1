package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Attachment is a supporting document (receipt, quote) uploaded for a requisition
type Attachment struct {
	ID            uuid.UUID `json:"id" db:"id"`
	RequisitionID int32     `json:"requisitionId" db:"requisition_id"`
	UploadedBy    int32     `json:"uploadedBy" db:"uploaded_by"`
	FileName      string    `json:"fileName" db:"file_name"`
	ThumbnailPath string    `json:"-" db:"thumbnail_path"`
	DisplayPath   string    `json:"-" db:"display_path"`
	OriginalPath  string    `json:"-" db:"original_path"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// AttachmentURLs holds presigned read URLs for each stored variant
type AttachmentURLs struct {
	Thumbnail string `json:"thumbnail"`
	Display   string `json:"display"`
	Original  string `json:"original"`
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) (*Attachment, error)
	ListByRequisition(ctx context.Context, requisitionID int32) ([]*Attachment, error)
}

// ObjectStorage stores binary objects by path and hands out temporary read URLs
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
