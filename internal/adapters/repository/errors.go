package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("volunteer profile not found")
	ErrInvalidSeed = errors.New("invalid seed data")
	ErrInvalidRow  = errors.New("invalid row")
)
