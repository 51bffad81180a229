package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/api/respond"
	"github.com/aliskhannn/media-exporter/internal/decode"
	"github.com/aliskhannn/media-exporter/internal/model"
	batchrepo "github.com/aliskhannn/media-exporter/internal/repository/batch"
	"github.com/aliskhannn/media-exporter/internal/service/export"
)

// service defines the interface for batch export operations.
type service interface {
	CreateBatch(ctx context.Context, uploads []export.Upload, profile string, quality float64) (model.Batch, error)
	GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error)
	Archive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	Preview(ctx context.Context, filename string, data []byte, profile string, category model.Category, manual *model.CropRect) ([]byte, error)
}

// Handler provides HTTP handlers for batch export endpoints.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// FileOverride carries optional per-file settings submitted with an upload.
type FileOverride struct {
	Category model.Category  `json:"category,omitempty"`
	Crop     *model.CropRect `json:"crop,omitempty"`
}

// CreateRequest is the "options" JSON field of the batch upload form.
type CreateRequest struct {
	Profile   string                  `json:"profile"`
	Quality   float64                 `json:"quality,omitempty"`
	Overrides map[string]FileOverride `json:"overrides,omitempty"`
}

// Create handles the batch upload request. It reads the multipart form,
// hands the files to the service, and responds with the pending batch.
func (h *Handler) Create(c *ginext.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("parse multipart form failed: %v", err))
		return
	}

	var req CreateRequest
	optionsJSON := c.PostForm("options")
	if optionsJSON == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("options field is required"))
		return
	}
	if err := json.Unmarshal([]byte(optionsJSON), &req); err != nil {
		zlog.Logger.Err(err).Msg("failed to unmarshal options")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to unmarshal options"))
		return
	}

	headers := c.Request.MultipartForm.File["images"]
	uploads := make([]export.Upload, 0, len(headers))

	for _, header := range headers {
		if header.Size > decode.MaxFileSize {
			respond.Fail(c, http.StatusBadRequest,
				fmt.Errorf("%s: %v", header.Filename, decode.ErrFileTooLarge))
			return
		}

		f, err := header.Open()
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read %s", header.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read %s", header.Filename))
			return
		}

		up := export.Upload{Filename: header.Filename, Data: data}
		if override, ok := req.Overrides[header.Filename]; ok {
			up.Category = override.Category
			up.ManualCrop = override.Crop
		}
		uploads = append(uploads, up)
	}

	b, err := h.service.CreateBatch(c.Request.Context(), uploads, req.Profile, req.Quality)
	if err != nil {
		if errors.Is(err, export.ErrUnknownProfile) ||
			errors.Is(err, export.ErrEmptyBatch) ||
			errors.Is(err, export.ErrTooManyAssets) ||
			errors.Is(err, decode.ErrFileTooLarge) {
			respond.Fail(c, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to create batch")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to create batch"))
		return
	}

	respond.Created(c, b)
}

// Get reports the current state of a batch with its per-asset outcomes.
func (h *Handler) Get(c *ginext.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	b, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, batchrepo.ErrBatchNotFound) {
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("batch not found"))
			return
		}

		zlog.Logger.Err(err).Msg("failed to get batch")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to get batch"))
		return
	}

	respond.OK(c, b)
}

// Archive streams the finished export archive for a batch.
func (h *Handler) Archive(c *ginext.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	reader, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, batchrepo.ErrBatchNotFound):
			respond.Fail(c, http.StatusNotFound, fmt.Errorf("batch not found"))
		case errors.Is(err, export.ErrArchiveNotReady):
			respond.Fail(c, http.StatusConflict, err)
		default:
			zlog.Logger.Err(err).Msg("failed to load archive")
			respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to load archive"))
		}
		return
	}
	defer reader.Close()

	respond.Zip(c, http.StatusOK, id.String()+".zip", reader)
}

// PreviewRequest is the "options" JSON field of the preview form.
type PreviewRequest struct {
	Profile  string          `json:"profile"`
	Category model.Category  `json:"category,omitempty"`
	Crop     *model.CropRect `json:"crop,omitempty"`
}

// Preview renders a thumbnail showing how a single file would be framed for
// a profile. Nothing is persisted.
func (h *Handler) Preview(c *ginext.Context) {
	f, header, err := c.Request.FormFile("image")
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to retrieve the file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to read %s", header.Filename))
		return
	}

	var req PreviewRequest
	optionsJSON := c.PostForm("options")
	if optionsJSON == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("options field is required"))
		return
	}
	if err := json.Unmarshal([]byte(optionsJSON), &req); err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("failed to unmarshal options"))
		return
	}

	thumb, err := h.service.Preview(c.Request.Context(), header.Filename, data,
		req.Profile, req.Category, req.Crop)
	if err != nil {
		if errors.Is(err, export.ErrUnknownProfile) || errors.Is(err, export.ErrExcludedForHere) {
			respond.Fail(c, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to render preview")
		respond.Fail(c, http.StatusUnprocessableEntity, fmt.Errorf("failed to render preview"))
		return
	}

	c.Data(http.StatusOK, "image/jpeg", thumb)
}

func parseID(c *ginext.Context) (uuid.UUID, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing id")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %v", err)
	}

	return id, nil
}
