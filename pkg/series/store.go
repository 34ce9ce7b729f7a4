package series

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"dicomviewer/internal/models"
	verrors "dicomviewer/pkg/errors"
)

// Store holds the series currently on display.
//
// A successful Load replaces the series wholesale; a failed Load leaves the
// previous series untouched. Loads that finish after a newer Load started, or
// after Clear, are discarded.
type Store struct {
	builder *Builder
	logger  *log.Logger

	mu         sync.RWMutex
	current    *models.Series
	generation uint64
}

// NewStore creates an empty store over builder
func NewStore(builder *Builder, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{builder: builder, logger: logger}
}

// Current returns the series on display, or nil
func (s *Store) Current() *models.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load builds a series from files and makes it current on success
func (s *Store) Load(ctx context.Context, files []models.SourceFile) (*models.Series, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	built, err := s.builder.Build(ctx, files)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Warn("discarding superseded series", "series", built.ID)
		return nil, verrors.New(verrors.ErrCodeSeriesBuild, "superseded by a newer load")
	}
	s.current = built
	return built, nil
}

// Clear drops the current series and invalidates loads in flight
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.current = nil
}
