// Package series builds ordered frame stacks from batches of input files.
//
// A batch is sorted by filename before any decoding happens, so index 0 is
// always the lexicographically first name. All files are normalized in
// parallel and joined before the series is constructed; if any file fails,
// the whole batch fails and no partial series is ever exposed.
package series

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dicomviewer/internal/models"
	verrors "dicomviewer/pkg/errors"
)

// FrameNormalizer is the per-file step of a build
type FrameNormalizer interface {
	Normalize(name string, data []byte) (*models.Frame, error)
}

// Builder constructs series from batches of source files
type Builder struct {
	normalizer FrameNormalizer
	workers    int
	logger     *log.Logger
}

// NewBuilder creates a builder that decodes at most workers files at once.
// A nil logger falls back to log.Default().
func NewBuilder(normalizer FrameNormalizer, workers int, logger *log.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{normalizer: normalizer, workers: workers, logger: logger}
}

// SortFiles orders files by case-sensitive lexicographic comparison of their
// names. The input slice is not modified.
func SortFiles(files []models.SourceFile) []models.SourceFile {
	sorted := make([]models.SourceFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Build normalizes every file and returns the ordered series.
//
// Any failure, including an empty batch or a cancelled context, is returned
// as a SERIES_BUILD_ERROR wrapping the first per-file error.
func (b *Builder) Build(ctx context.Context, files []models.SourceFile) (*models.Series, error) {
	if len(files) == 0 {
		return nil, verrors.New(verrors.ErrCodeSeriesBuild, "no files selected")
	}

	start := time.Now()
	sorted := SortFiles(files)
	frames := make([]*models.Frame, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, file := range sorted {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frame, err := b.normalizer.Normalize(file.Name, file.Data)
			if err != nil {
				return err
			}
			frames[i] = frame
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.logger.Error("series build failed", "files", len(sorted), "err", err)
		return nil, verrors.SeriesBuild(err, "%d file batch rejected", len(sorted))
	}

	s := &models.Series{
		ID:     uuid.NewString(),
		Frames: frames,
	}
	b.logger.Debug("series order", "series", s.ID, "names", s.Names())
	b.logger.Info("series built", "series", s.ID, "frames", len(frames), "elapsed", time.Since(start).Round(time.Millisecond))
	return s, nil
}
