package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus signals a transition attempted from a state the order
	// state machine does not allow.
	ErrInvalidStatus = errors.New("invalid order status for transition")
)
