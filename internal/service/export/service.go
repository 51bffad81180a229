package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/archive"
	"github.com/aliskhannn/media-exporter/internal/classify"
	"github.com/aliskhannn/media-exporter/internal/decode"
	"github.com/aliskhannn/media-exporter/internal/mediaprofile"
	"github.com/aliskhannn/media-exporter/internal/model"
	"github.com/aliskhannn/media-exporter/internal/preview"
	"github.com/aliskhannn/media-exporter/internal/resample"
	"github.com/aliskhannn/media-exporter/internal/storage/file"
)

// MaxBatchAssets is the boundary limit on assets per batch.
const MaxBatchAssets = 30

var (
	ErrEmptyBatch      = errors.New("batch contains no files")
	ErrTooManyAssets   = fmt.Errorf("batch exceeds the %d asset limit", MaxBatchAssets)
	ErrUnknownProfile  = errors.New("unknown media profile")
	ErrExcludedForHere = errors.New("category is excluded for this profile")
	ErrArchiveNotReady = errors.New("archive is not ready")
)

// fileStorage defines the interface for storing objects (e.g., MinIO).
type fileStorage interface {
	Save(ctx context.Context, subdir, filename string, src io.Reader, size int64, contentType string) (string, error)
	Load(ctx context.Context, path string) (io.ReadCloser, error)
}

// producer defines the interface for enqueueing export jobs into a message broker.
type producer interface {
	Produce(ctx context.Context, job model.ExportJob) error
}

// repository persists batch records and their outcomes.
type repository interface {
	CreateBatch(ctx context.Context, b model.Batch) error
	UpdateResult(ctx context.Context, id uuid.UUID, status, archivePath string, outcomes []model.ProcessingOutcome) error
	GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error)
}

// exporter runs the geometry/resampling pipeline over a batch of assets.
type exporter interface {
	Export(ctx context.Context, assets []model.ImageAsset, profile string, quality float64, aw archive.Writer) []model.ProcessingOutcome
}

// cropSolver resolves the source rectangle for previews.
type cropSolver interface {
	Resolve(ctx context.Context, img image.Image, category model.Category, target model.TargetSize, manual *model.CropRect) model.CropRect
}

// Upload is one file submitted to a batch. Category is optional; when empty
// it is derived from the file name. A manual crop, when present, overrides
// any automatic framing for that file.
type Upload struct {
	Filename   string
	Data       []byte
	Category   model.Category
	ManualCrop *model.CropRect
}

// Service provides the business logic for batch exports: it validates and
// stores uploads, enqueues export jobs, and executes them when consumed
// from the queue.
type Service struct {
	storage  fileStorage
	producer producer
	repo     repository
	pipeline exporter
	decoder  *decode.Decoder
	solver   cropSolver
	catalog  *mediaprofile.Catalog
	quality  float64
}

// NewService wires the service dependencies. quality is the default JPEG
// quality factor applied when a request does not specify one.
func NewService(
	fs fileStorage,
	p producer,
	repo repository,
	pl exporter,
	d *decode.Decoder,
	solver cropSolver,
	catalog *mediaprofile.Catalog,
	quality float64,
) *Service {
	if quality <= 0 {
		quality = 0.9
	}
	return &Service{
		storage:  fs,
		producer: p,
		repo:     repo,
		pipeline: pl,
		decoder:  d,
		solver:   solver,
		catalog:  catalog,
		quality:  quality,
	}
}

// CreateBatch validates the uploads, stores the originals, persists the
// batch record and enqueues the export job. It returns the pending batch.
func (s *Service) CreateBatch(ctx context.Context, uploads []Upload, profile string, quality float64) (model.Batch, error) {
	if !s.catalog.Has(profile) {
		return model.Batch{}, ErrUnknownProfile
	}
	if len(uploads) == 0 {
		return model.Batch{}, ErrEmptyBatch
	}
	if len(uploads) > MaxBatchAssets {
		return model.Batch{}, ErrTooManyAssets
	}
	if quality <= 0 {
		quality = s.quality
	}

	batchID := uuid.New()
	assets := make([]model.BatchAsset, 0, len(uploads))

	for _, up := range uploads {
		if len(up.Data) > decode.MaxFileSize {
			return model.Batch{}, fmt.Errorf("%s: %w", up.Filename, decode.ErrFileTooLarge)
		}

		category := up.Category
		if category == "" {
			category = classify.Classify(up.Filename)
		}

		objectName := path.Join(batchID.String(), up.Filename)
		dst, err := s.storage.Save(ctx, file.SubdirOriginals, objectName,
			bytes.NewReader(up.Data), int64(len(up.Data)), "")
		if err != nil {
			return model.Batch{}, fmt.Errorf("create batch: failed to save %s: %w", up.Filename, err)
		}

		assets = append(assets, model.BatchAsset{
			ID:         uuid.New(),
			Filename:   up.Filename,
			Path:       dst,
			Category:   category,
			ManualCrop: up.ManualCrop,
		})
	}

	batch := model.Batch{
		ID:      batchID,
		Profile: profile,
		Quality: quality,
		Status:  model.BatchPending,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return model.Batch{}, fmt.Errorf("create batch: %w", err)
	}

	job := model.ExportJob{
		BatchID:   batchID,
		Profile:   profile,
		Quality:   quality,
		Assets:    assets,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.producer.Produce(ctx, job); err != nil {
		return model.Batch{}, fmt.Errorf("create batch: failed to enqueue job: %w", err)
	}

	return batch, nil
}

// RunExport loads the batch assets from storage, runs the export pipeline,
// uploads the resulting archive and records the outcomes. Assets that fail
// to load or decode are marked failed without aborting the batch.
func (s *Service) RunExport(ctx context.Context, job model.ExportJob) error {
	assets := make([]model.ImageAsset, len(job.Assets))
	loadErrs := make([]string, len(job.Assets))

	for i, ba := range job.Assets {
		assets[i] = model.ImageAsset{
			ID:         ba.ID,
			Filename:   ba.Filename,
			Category:   ba.Category,
			ManualCrop: ba.ManualCrop,
		}

		img, err := s.loadAsset(ctx, ba)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("file", ba.Filename).Msg("failed to load asset")
			loadErrs[i] = err.Error()
			continue
		}
		assets[i].Image = img
	}

	buf := new(bytes.Buffer)
	zw := archive.NewZipWriter(buf)

	outcomes := s.pipeline.Export(ctx, assets, job.Profile, job.Quality, zw)

	if err := zw.Close(); err != nil {
		return fmt.Errorf("run export: %w", err)
	}

	// Replace the generic "no raster" message with the concrete load error.
	succeeded := 0
	for i := range outcomes {
		if loadErrs[i] != "" && outcomes[i].Status == model.OutcomeFailed {
			outcomes[i].Error = loadErrs[i]
		}
		if outcomes[i].Status == model.OutcomeSuccess {
			succeeded++
		}
	}

	archivePath := ""
	if succeeded > 0 {
		var err error
		archivePath, err = s.storage.Save(ctx, file.SubdirArchives, job.BatchID.String()+".zip",
			buf, int64(buf.Len()), "application/zip")
		if err != nil {
			return fmt.Errorf("run export: failed to save archive: %w", err)
		}
	}

	status := model.BatchProcessed
	if succeeded == 0 && allFailed(outcomes) {
		status = model.BatchFailed
	}

	if err := s.repo.UpdateResult(ctx, job.BatchID, status, archivePath, outcomes); err != nil {
		return fmt.Errorf("run export: %w", err)
	}

	return nil
}

func (s *Service) loadAsset(ctx context.Context, ba model.BatchAsset) (image.Image, error) {
	rc, err := s.storage.Load(ctx, ba.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ba.Path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ba.Path, err)
	}

	return s.decoder.Decode(ba.Filename, data)
}

func allFailed(outcomes []model.ProcessingOutcome) bool {
	for _, o := range outcomes {
		if o.Status != model.OutcomeFailed {
			return false
		}
	}
	return len(outcomes) > 0
}

// GetBatch returns the batch record with its outcomes.
func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

// Archive streams the finished export archive for a batch.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	b, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ArchivePath == "" {
		return nil, ErrArchiveNotReady
	}

	return s.storage.Load(ctx, b.ArchivePath)
}

// Preview renders a letterboxed thumbnail showing how a file would be
// cropped for the given profile, without persisting anything.
func (s *Service) Preview(ctx context.Context, filename string, data []byte, profile string, category model.Category, manual *model.CropRect) ([]byte, error) {
	if !s.catalog.Has(profile) {
		return nil, ErrUnknownProfile
	}
	if category == "" {
		category = classify.Classify(filename)
	}

	target, ok := s.catalog.TargetSize(profile, category)
	if !ok {
		return nil, ErrExcludedForHere
	}

	img, err := s.decoder.Decode(filename, data)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	crop := s.solver.Resolve(ctx, img, category, target, manual)

	thumb, err := preview.Compose(img, &crop, target)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	return resample.EncodeJPEG(thumb, s.quality)
}
