package events

import "errors"

var (
	ErrInvalidComposeInput    = errors.New("events: invalid compose input")
	ErrUnsupportedCombination = errors.New("events: unsupported schema/operation combination")

	ErrInvalidConfiguration = errors.New("events: invalid publisher configuration")
	ErrPublishFailed        = errors.New("events: failed to publish event")
)
