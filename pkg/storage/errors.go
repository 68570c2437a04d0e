package storage

import "errors"

var (
	ErrInvalidSubscription  = errors.New("storage: invalid subscription")
	ErrSubscriptionNotFound = errors.New("storage: subscription not found")
	ErrFailedToQuery        = errors.New("storage: query failed")
	ErrFailedToSave         = errors.New("storage: save failed")
	ErrFailedToMigrate      = errors.New("storage: migration failed")
)
