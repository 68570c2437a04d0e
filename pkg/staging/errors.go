package staging

import "errors"

var (
	ErrInvalidSubscription = errors.New("staging: invalid subscription")
	ErrNotStaged           = errors.New("staging: subscription not staged")
	ErrFailedToStage       = errors.New("staging: cache operation failed")
)
