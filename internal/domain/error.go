package domain

import "errors"

var (
	// Navigation errors. Both are resolved to user-visible notices, never to transport faults.
	ErrCatalogEmpty  = errors.New("no tracks available")
	ErrTrackNotFound = errors.New("track not found")

	ErrDeliveryFailed  = errors.New("audio delivery failed")
	ErrInvalidArgument = errors.New("invalid argument")
)
