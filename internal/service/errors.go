package service

import (
	"errors"

	"word-counter/internal/storage"
)

// Error kinds surfaced to callers. Every error returned by Service wraps
// exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrProcessing   = errors.New("processing failure")
)

// Kind classifies err as ErrInvalidInput, ErrNotFound or ErrProcessing.
// A kind already attached by Service wins over any cause it wraps. Bare
// storage sentinels are mapped the same way Service maps them; anything
// else is ErrProcessing.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProcessing):
		return ErrProcessing
	case errors.Is(err, ErrInvalidInput), errors.Is(err, storage.ErrInvalidName):
		return ErrInvalidInput
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	default:
		return ErrProcessing
	}
}
