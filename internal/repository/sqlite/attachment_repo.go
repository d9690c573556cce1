package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

type attachmentRow struct {
	ID            uuid.UUID `db:"id"`
	RequisitionID int32     `db:"requisition_id"`
	UploadedBy    int32     `db:"uploaded_by"`
	FileName      string    `db:"file_name"`
	ThumbnailPath string    `db:"thumbnail_path"`
	DisplayPath   string    `db:"display_path"`
	OriginalPath  string    `db:"original_path"`
	CreatedAt     timestamp `db:"created_at"`
}

// AttachmentRepository implements domain.AttachmentRepository on SQLite
type AttachmentRepository struct {
	store *Store
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(store *Store) *AttachmentRepository {
	return &AttachmentRepository{store: store}
}

// Create records the stored variants of an uploaded attachment
func (r *AttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	created := *attachment
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.CreatedAt = nowUTC()

	query, args, err := sq.Insert("requisition_attachments").
		Columns("id", "requisition_id", "uploaded_by", "file_name", "thumbnail_path", "display_path", "original_path", "created_at").
		Values(created.ID.String(), created.RequisitionID, created.UploadedBy, created.FileName,
			created.ThumbnailPath, created.DisplayPath, created.OriginalPath, formatTime(created.CreatedAt)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrRequisitionNotFound
		}
		return nil, fmt.Errorf("sqlite: create attachment: %w", err)
	}
	return &created, nil
}

// ListByRequisition returns a requisition's attachments in upload order
func (r *AttachmentRepository) ListByRequisition(ctx context.Context, requisitionID int32) ([]*domain.Attachment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := sq.Select("id", "requisition_id", "uploaded_by", "file_name", "thumbnail_path", "display_path", "original_path", "created_at").
		From("requisition_attachments").
		Where(squirrel.Eq{"requisition_id": requisitionID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []attachmentRow
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list attachments: %w", err)
	}
	attachments := make([]*domain.Attachment, len(rows))
	for i, row := range rows {
		attachments[i] = &domain.Attachment{
			ID:            row.ID,
			RequisitionID: row.RequisitionID,
			UploadedBy:    row.UploadedBy,
			FileName:      row.FileName,
			ThumbnailPath: row.ThumbnailPath,
			DisplayPath:   row.DisplayPath,
			OriginalPath:  row.OriginalPath,
			CreatedAt:     row.CreatedAt.at,
		}
	}
	return attachments, nil
}
