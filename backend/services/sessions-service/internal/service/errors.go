package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is the parent of every lookup failure surfaced to callers.
var ErrNotFound = errors.New("not found")

var (
	ErrChargerNotFound        = fmt.Errorf("charger %w", ErrNotFound)
	ErrConnectorNotFound      = fmt.Errorf("connector %w", ErrNotFound)
	ErrSessionNotFound        = fmt.Errorf("session %w", ErrNotFound)
	ErrNoPendingAuthorization = fmt.Errorf("pending authorization %w", ErrNotFound)
)

// ErrInvalidInput marks a request the engine refuses to act on.
var ErrInvalidInput = errors.New("invalid input")
