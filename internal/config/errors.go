package config

import "errors"

var (
	ErrMissingProviderToken  = errors.New("provider token is required")
	ErrInvalidProviderType   = errors.New("invalid provider type")
	ErrInvalidAnalyzerConfig = errors.New("invalid analyzer configuration")
)
