package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// AttachmentRepository implements domain.AttachmentRepository using PostgreSQL
type AttachmentRepository struct {
	db DBTX
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db DBTX) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create records the stored variants of an uploaded attachment
func (r *AttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error) {
	query, args, err := psql.Insert("requisition_attachments").
		Columns("id", "requisition_id", "uploaded_by", "file_name", "thumbnail_path", "display_path", "original_path").
		Values(attachment.ID, attachment.RequisitionID, attachment.UploadedBy, attachment.FileName,
			attachment.ThumbnailPath, attachment.DisplayPath, attachment.OriginalPath).
		Suffix("RETURNING id, requisition_id, uploaded_by, file_name, thumbnail_path, display_path, original_path, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var created domain.Attachment
	if err := pgxscan.Get(ctx, r.db, &created, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrRequisitionNotFound
		}
		return nil, fmt.Errorf("inserting attachment: %w", err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

// ListByRequisition returns a requisition's attachments in upload order
func (r *AttachmentRepository) ListByRequisition(ctx context.Context, requisitionID int32) ([]*domain.Attachment, error) {
	query, args, err := psql.Select("id", "requisition_id", "uploaded_by", "file_name", "thumbnail_path", "display_path", "original_path", "created_at").
		From("requisition_attachments").
		Where(squirrel.Eq{"requisition_id": requisitionID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var attachments []*domain.Attachment
	if err := pgxscan.Select(ctx, r.db, &attachments, query, args...); err != nil {
		return nil, fmt.Errorf("scanning attachments: %w", err)
	}
	return attachments, nil
}
