package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotOwner             = errors.New("subscription does not belong to user")
	ErrNotCancelable        = errors.New("subscription is not in a cancelable state")
	ErrAlreadyScheduled     = errors.New("subscription is already scheduled for cancellation")
	ErrMissingProviderID    = errors.New("subscription has no provider subscription id")
)
