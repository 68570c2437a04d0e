package publisher

import "errors"

var (
	ErrNotConfigured             = errors.New("publisher: configuration not set up")
	ErrFailedToLoadConfiguration = errors.New("publisher: failed to load configuration")
)
