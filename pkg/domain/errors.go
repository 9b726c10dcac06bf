package domain

import "errors"

// ErrNoHandler is returned when a session is built without an UpdateHandler.
var ErrNoHandler = errors.New("update handler is required")

// ErrConnectionClosed is returned when the command stream has been shut down.
var ErrConnectionClosed = errors.New("connection closed")

// ErrInvalidBounds is returned when an ENS_SCENE_BOUNDS attribute cannot be parsed.
var ErrInvalidBounds = errors.New("invalid scene bounds")

// ErrFingerprintNotFound is returned when no digest is stored for a part key.
var ErrFingerprintNotFound = errors.New("fingerprint not found")

// ErrAlreadyStarted is returned when a connection is started twice.
var ErrAlreadyStarted = errors.New("connection already started")
