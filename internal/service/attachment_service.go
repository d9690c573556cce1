package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxAttachmentSize  = 5 * 1024 * 1024 // 5MB
	MinImageWidth      = 50
	MinImageHeight     = 50
	ThumbnailWidth     = 200
	DisplayWidth       = 800
	JPEGQuality        = 85
	PresignedURLExpiry = 15 * time.Minute
)

var (
	ErrImageTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat    = errors.New("invalid format. Supported: JPEG, PNG")
	ErrImageTooSmall    = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData = errors.New("invalid image data")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// AttachmentView is an attachment with presigned URLs for its variants
type AttachmentView struct {
	*domain.Attachment
	URLs domain.AttachmentURLs `json:"urls"`
}

// AttachmentService stores supporting documents for requisitions. Images are
// resized into thumbnail, display and original variants.
type AttachmentService struct {
	attachmentRepo  domain.AttachmentRepository
	requisitionRepo domain.RequisitionRepository
	costCenterRepo  domain.CostCenterRepository
	storage         domain.ObjectStorage
	eventPublisher  websocket.EventPublisher
}

// NewAttachmentService creates a new AttachmentService. storage may be nil,
// in which case uploads are disabled.
func NewAttachmentService(attachmentRepo domain.AttachmentRepository, requisitionRepo domain.RequisitionRepository, costCenterRepo domain.CostCenterRepository, storage domain.ObjectStorage) *AttachmentService {
	return &AttachmentService{
		attachmentRepo:  attachmentRepo,
		requisitionRepo: requisitionRepo,
		costCenterRepo:  costCenterRepo,
		storage:         storage,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AttachmentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *AttachmentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateImage validates image format and size
func (s *AttachmentService) ValidateImage(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

// validateAndDecode validates the image and returns the decoded image
func (s *AttachmentService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxAttachmentSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// Upload processes an image and stores all variants for a requisition.
// Only the requester or the cost center manager may upload.
func (s *AttachmentService) Upload(ctx context.Context, requisitionID, uploaderID int32, data []byte, filename string) (*AttachmentView, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrStorageDisabled
	}

	req, managerID, err := s.authorize(ctx, requisitionID, uploaderID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	attachmentID := uuid.New()
	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	paths := make(map[string]string)
	for _, variant := range variants {
		processed := img
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			s.cleanup(ctx, paths)
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := fmt.Sprintf("requisitions/%d/%s_%s.jpg", requisitionID, attachmentID, variant.name)
		stored, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanup(ctx, paths)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		paths[variant.name] = stored
	}

	attachment, err := s.attachmentRepo.Create(ctx, &domain.Attachment{
		ID:            attachmentID,
		RequisitionID: requisitionID,
		UploadedBy:    uploaderID,
		FileName:      filepath.Base(filename),
		ThumbnailPath: paths["thumb"],
		DisplayPath:   paths["display"],
		OriginalPath:  paths["original"],
	})
	if err != nil {
		s.cleanup(ctx, paths)
		return nil, err
	}

	log.Info().
		Str("attachment_id", attachmentID.String()).
		Int32("requisition_id", requisitionID).
		Int32("uploaded_by", uploaderID).
		Msg("Attachment uploaded")

	view, err := s.view(ctx, attachment)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AttachmentCreated(view), req.RequesterID, managerID)
	}
	return view, nil
}

// List returns a requisition's attachments with fresh presigned URLs
func (s *AttachmentService) List(ctx context.Context, requisitionID, viewerID int32) ([]*AttachmentView, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrStorageDisabled
	}
	if _, _, err := s.authorize(ctx, requisitionID, viewerID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.ListByRequisition(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	views := make([]*AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		v, err := s.view(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// authorize loads the requisition and checks that userID is its requester or
// the manager of its cost center
func (s *AttachmentService) authorize(ctx context.Context, requisitionID, userID int32) (*domain.RequisitionDetail, int32, error) {
	req, err := s.requisitionRepo.GetByID(ctx, requisitionID)
	if err != nil {
		return nil, 0, err
	}
	costCenter, err := s.costCenterRepo.GetByID(ctx, req.CostCenterID)
	if err != nil {
		return nil, 0, err
	}
	if userID != req.RequesterID && userID != costCenter.ManagerID {
		return nil, 0, domain.ErrNotParticipant
	}
	return req, costCenter.ManagerID, nil
}

func (s *AttachmentService) view(ctx context.Context, a *domain.Attachment) (*AttachmentView, error) {
	thumb, err := s.storage.GeneratePresignedURL(ctx, a.ThumbnailPath, PresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	display, err := s.storage.GeneratePresignedURL(ctx, a.DisplayPath, PresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	original, err := s.storage.GeneratePresignedURL(ctx, a.OriginalPath, PresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &AttachmentView{
		Attachment: a,
		URLs: domain.AttachmentURLs{
			Thumbnail: thumb,
			Display:   display,
			Original:  original,
		},
	}, nil
}

// cleanup removes variants already uploaded during a failed operation
func (s *AttachmentService) cleanup(ctx context.Context, paths map[string]string) {
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("object_path", p).Msg("Failed to clean up attachment variant")
		}
	}
}
