package core

import "errors"

var (
	ErrUnknownFramework   = errors.New("unknown framework")
	ErrDuplicateFramework = errors.New("framework already registered")
	ErrInvalidFramework   = errors.New("invalid framework spec")
	ErrNoFrameworks       = errors.New("no frameworks requested")
)
