package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDatasetUnavailable is fatal: no phrase dataset means no answers at all.
	ErrDatasetUnavailable = errors.New("phrase dataset unavailable")

	// ErrGenerationUnavailable degrades a single exchange, never the engine.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrContextUnavailable degrades to an empty context snapshot.
	ErrContextUnavailable = errors.New("content context unavailable")
)
