package gps

import "errors"

// Common errors returned by the replay engine
var (
	ErrNoUsableData     = errors.New("log contains no usable position data")
	ErrNotConnected     = errors.New("replay source is not connected")
	ErrAlreadyConnected = errors.New("replay source is already connected")
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)
