package service

import (
	"errors"

	"github.com/okian/eventmatch/internal/adapters/repository"
)

// Error kinds returned by Matches. Callers map them with errors.Is.
var (
	ErrInvalidVolunteerID = errors.New("invalid volunteer id")
	ErrNotFound           = repository.ErrNotFound
	ErrStore              = errors.New("store failure")
)
