package reception

import "errors"

var (
	// ErrInvalidQuantity means a received quantity was negative.
	ErrInvalidQuantity = errors.New("received quantity must be non-negative")
	// ErrUnknownLine means no invoice line carries the given ordinal.
	ErrUnknownLine = errors.New("no invoice line with that ordinal")
	// ErrNotReady means close was attempted before every line was counted.
	ErrNotReady = errors.New("reception has uncounted lines")
	// ErrAlreadyClosed means a mutation was attempted after close.
	ErrAlreadyClosed = errors.New("reception is closed")
	// ErrNotFound means the session store holds no reception for the id.
	ErrNotFound = errors.New("no active reception")
)
