package usecase

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"telegram-media-navigator/internal/domain"
	"telegram-media-navigator/internal/domain/model"
	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/logging"

	"github.com/rs/zerolog"
)

// PlayerUseCase resolves a requested track number against a catalog snapshot.
type PlayerUseCase struct {
	baseURL   string
	audioPath string
	performer string
	meta      adapter.MetadataReader
	log       *zerolog.Logger
}

// NewPlayerUseCase constructs a PlayerUseCase. baseURL is scheme+host ("https://example.com"),
// audioPath the path segment files are served under ("/music/"). meta may be nil.
func NewPlayerUseCase(baseURL, audioPath, performer string, meta adapter.MetadataReader, logger *zerolog.Logger) *PlayerUseCase {
	if logger == nil {
		logger = logging.Nop()
	}
	if audioPath == "" {
		audioPath = "/music/"
	}
	return &PlayerUseCase{
		baseURL:   strings.TrimRight(baseURL, "/"),
		audioPath: audioPath,
		performer: performer,
		meta:      meta,
		log:       logger,
	}
}

// Play finds the first track whose id is integer-equivalent to requestedID and computes
// its URL and the circular next track.
func (uc *PlayerUseCase) Play(ctx context.Context, catalog model.Catalog, requestedID string) (*model.Playback, error) {
	if catalog.Empty() {
		return nil, domain.ErrCatalogEmpty
	}
	i, ok := catalog.Find(requestedID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackNotFound, requestedID)
	}
	track := catalog.Tracks[i]

	return &model.Playback{
		Track:     track,
		Next:      catalog.Next(i),
		URL:       uc.TrackURL(track.FileName),
		Performer: uc.performerFor(ctx, catalog.Dir, track),
	}, nil
}

// TrackURL joins the public base, the audio path and the escaped filename.
func (uc *PlayerUseCase) TrackURL(fileName string) string {
	return uc.baseURL + uc.audioPath + url.PathEscape(fileName)
}

func (uc *PlayerUseCase) performerFor(ctx context.Context, dir string, t model.Track) string {
	if uc.meta == nil || dir == "" {
		return uc.performer
	}
	artist, err := uc.meta.Artist(filepath.Join(dir, t.FileName))
	if err != nil {
		logging.With(ctx, uc.log).Debug().Err(err).Str("file", t.FileName).Msg("read tags")
		return uc.performer
	}
	if artist = strings.TrimSpace(artist); artist != "" {
		return artist
	}
	return uc.performer
}
