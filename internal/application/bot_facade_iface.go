package application

import (
	"context"

	"telegram-media-navigator/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// These describe the minimal surface the facade needs, so tests can pass light-weight fakes.

type CatalogUseCaseIface interface {
	Build(ctx context.Context) model.Catalog
}

type PlayerUseCaseIface interface {
	Play(ctx context.Context, catalog model.Catalog, requestedID string) (*model.Playback, error)
}

type TranslatorIface interface {
	T(key string, args ...interface{}) string
	Policy(args ...interface{}) string
}
