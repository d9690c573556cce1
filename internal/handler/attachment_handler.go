package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AttachmentHandler handles supporting documents attached to requisitions
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// optionalUserID reads a user id supplied as a form or query value
func optionalUserID(c echo.Context, name string) (*int32, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return nil, fieldError(name, name+" must be a positive integer")
	}
	v := int32(id)
	return &v, nil
}

// UploadAttachment godoc
// @Summary Attach an image to a requisition
// @Description Stores thumbnail, display and original variants. Only the requester or the cost center manager may upload.
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requisition ID"
// @Param file formData file true "JPEG or PNG image, at most 5MB"
// @Param userId formData int false "Uploader when unauthenticated"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /requisitions/{id}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	if h.attachmentService == nil || !h.attachmentService.IsEnabled() {
		return NewUnavailableError(c, domain.ErrStorageDisabled.Error())
	}

	requisitionID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	supplied, err := optionalUserID(c, "userId")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	uploaderID, err := actingUser(c, supplied, "userId")
	if err != nil {
		return handleServiceError(c, err, "")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxAttachmentSize {
		return handleServiceError(c, service.ErrImageTooLarge, "")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxAttachmentSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	view, err := h.attachmentService.Upload(c.Request().Context(), requisitionID, uploaderID, data, file.Filename)
	if err != nil {
		return handleServiceError(c, err, "Failed to upload attachment")
	}
	return c.JSON(http.StatusCreated, toAttachmentResponse(view))
}

// ListAttachments godoc
// @Summary List a requisition's attachments
// @Description Returns presigned URLs valid for 15 minutes
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requisition ID"
// @Param userId query int false "Viewer when unauthenticated"
// @Success 200 {array} AttachmentResponse
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /requisitions/{id}/attachments [get]
func (h *AttachmentHandler) ListAttachments(c echo.Context) error {
	if h.attachmentService == nil || !h.attachmentService.IsEnabled() {
		return NewUnavailableError(c, domain.ErrStorageDisabled.Error())
	}

	requisitionID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	supplied, err := optionalUserID(c, "userId")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	viewerID, err := actingUser(c, supplied, "userId")
	if err != nil {
		return handleServiceError(c, err, "")
	}

	views, err := h.attachmentService.List(c.Request().Context(), requisitionID, viewerID)
	if err != nil {
		return handleServiceError(c, err, "Failed to list attachments")
	}
	return c.JSON(http.StatusOK, mapSlice(views, toAttachmentResponse))
}
