package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"telegram-media-navigator/internal/domain"
	"telegram-media-navigator/internal/domain/model"
	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// CatalogUseCase derives the track catalog from the first existing candidate directory.
// Nothing is cached: every call reads the directory again.
type CatalogUseCase struct {
	dirs []string
	exts []string
	log  *zerolog.Logger
}

// NewCatalogUseCase constructs a CatalogUseCase. dirs are tried in order.
func NewCatalogUseCase(dirs, exts []string, logger *zerolog.Logger) *CatalogUseCase {
	if logger == nil {
		logger = logging.Nop()
	}
	return &CatalogUseCase{dirs: dirs, exts: exts, log: logger}
}

// ResolveDir returns the first candidate that exists and is a directory, or "".
func (uc *CatalogUseCase) ResolveDir() string {
	for _, d := range uc.dirs {
		if d == "" {
			continue
		}
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			return d
		}
	}
	return ""
}

// Build returns the current catalog. Filesystem errors are logged and yield an empty
// catalog; callers decide how to present emptiness.
func (uc *CatalogUseCase) Build(ctx context.Context) model.Catalog {
	dir := uc.ResolveDir()
	if dir == "" {
		logging.With(ctx, uc.log).Warn().Strs("candidates", uc.dirs).Msg("no audio directory found")
		metrics.SetCatalogTracks(0)
		return model.Catalog{}
	}

	c, err := BuildCatalog(dir, uc.exts)
	if err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Str("dir", dir).Msg("catalog build failed")
		metrics.IncCatalogBuildError()
		metrics.SetCatalogTracks(0)
		return model.Catalog{Dir: dir}
	}
	metrics.SetCatalogTracks(c.Len())
	return c
}

// TrackPath resolves fileName inside the current audio directory. Only plain names of
// audio files that exist are accepted.
func (uc *CatalogUseCase) TrackPath(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidArgument, fileName)
	}
	if !IsAudioFile(fileName, uc.exts) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidArgument, fileName)
	}
	dir := uc.ResolveDir()
	if dir == "" {
		return "", domain.ErrCatalogEmpty
	}
	path := filepath.Join(dir, fileName)
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return "", fmt.Errorf("%w: %q", domain.ErrTrackNotFound, fileName)
	}
	return path, nil
}

// BuildCatalog lists dir and maps every audio file to a Track, sorted by filename.
// Dotfiles are skipped, matching what TrackPath will serve.
func BuildCatalog(dir string, exts []string) (model.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("read audio dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsAudioFile(e.Name(), exts) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	tracks := make([]model.Track, 0, len(names))
	for _, n := range names {
		tracks = append(tracks, model.ParseTrack(n))
	}
	return model.Catalog{Dir: dir, Tracks: tracks}, nil
}

// IsAudioFile reports whether name ends in one of exts, ignoring case.
func IsAudioFile(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
