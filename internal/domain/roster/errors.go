package roster

import "errors"

var (
	ErrNotLoaded     = errors.New("store not loaded")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownMember = errors.New("unknown member")
	ErrInvalidMember = errors.New("invalid member")
	ErrInvalidEvent  = errors.New("invalid event")
)
