// Package pipeline orchestrates a batch export: per-asset target lookup,
// crop resolution, resampling and hand-off to the archive writer.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/media-exporter/internal/archive"
	"github.com/aliskhannn/media-exporter/internal/geometry"
	"github.com/aliskhannn/media-exporter/internal/mediaprofile"
	"github.com/aliskhannn/media-exporter/internal/model"
	"github.com/aliskhannn/media-exporter/internal/resample"
)

// Skip reasons reported in outcomes.
const (
	ReasonCategoryExcluded = "category excluded for profile"
	ReasonBatchCanceled    = "batch canceled"
)

// Pipeline runs batch exports over a bounded worker pool. Assets are
// independent, so they are processed concurrently; the returned outcomes
// always follow the input order.
type Pipeline struct {
	catalog *mediaprofile.Catalog
	solver  *geometry.Solver
	workers int
}

// New creates a pipeline. workers <= 0 selects one worker per CPU.
func New(catalog *mediaprofile.Catalog, solver *geometry.Solver, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{
		catalog: catalog,
		solver:  solver,
		workers: workers,
	}
}

// Export processes every asset against the profile and hands successful
// rasters to the archive writer. A failure on one asset never aborts the
// batch; cancellation stops assets that have not started yet and lets
// in-flight ones finish. Archive writes are serialized internally.
func (p *Pipeline) Export(ctx context.Context, assets []model.ImageAsset, profile string, quality float64, aw archive.Writer) []model.ProcessingOutcome {
	outcomes := make([]model.ProcessingOutcome, len(assets))

	jobs := make(chan int)
	var archiveMu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.processAsset(ctx, assets[i], profile, quality, aw, &archiveMu)
			}
		}()
	}

	for i := range assets {
		// Stop dispatching once the batch is canceled; remaining assets
		// are marked skipped below.
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		for i := range outcomes {
			if outcomes[i].Status == "" {
				outcomes[i] = model.ProcessingOutcome{
					AssetID:    assets[i].ID,
					SourceName: assets[i].Filename,
					Status:     model.OutcomeSkipped,
					Reason:     ReasonBatchCanceled,
				}
			}
		}
	}

	return outcomes
}

func (p *Pipeline) processAsset(ctx context.Context, asset model.ImageAsset, profile string, quality float64, aw archive.Writer, archiveMu *sync.Mutex) model.ProcessingOutcome {
	outcome := model.ProcessingOutcome{
		AssetID:    asset.ID,
		SourceName: asset.Filename,
	}

	if asset.Image == nil {
		return failed(outcome, errors.New("asset has no decoded raster"))
	}

	target, ok := p.catalog.TargetSize(profile, asset.Category)
	if !ok {
		outcome.Status = model.OutcomeSkipped
		outcome.Reason = ReasonCategoryExcluded
		return outcome
	}

	crop := p.solver.Resolve(ctx, asset.Image, asset.Category, target, asset.ManualCrop)

	raster, err := resample.Resample(asset.Image, crop, target)
	if err != nil {
		return failed(outcome, err)
	}

	data, err := resample.EncodeJPEG(raster, quality)
	if err != nil {
		return failed(outcome, err)
	}

	outputName := OutputName(asset.Filename)
	archiveMu.Lock()
	err = aw.Add(outputName, data)
	archiveMu.Unlock()
	if err != nil {
		return failed(outcome, err)
	}

	outcome.Status = model.OutcomeSuccess
	outcome.OutputName = outputName
	return outcome
}

func failed(outcome model.ProcessingOutcome, err error) model.ProcessingOutcome {
	zlog.Logger.Warn().Err(err).Str("file", outcome.SourceName).Msg("asset export failed")
	outcome.Status = model.OutcomeFailed
	outcome.Error = err.Error()
	return outcome
}

// OutputName derives the archive entry name from the source file name:
// original extension stripped, ".jpg" appended.
func OutputName(sourceName string) string {
	return strings.TrimSuffix(sourceName, filepath.Ext(sourceName)) + ".jpg"
}
