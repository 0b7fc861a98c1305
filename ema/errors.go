package ema

import "github.com/cockroachdb/errors"

var (
	// ErrModeMismatch is returned when the ingestion method does not match
	// the accumulator's mode.
	ErrModeMismatch = errors.New("ingestion method does not match accumulator mode")
	// ErrStaleData is returned when a timestamp precedes the last accepted one.
	ErrStaleData = errors.New("stale observation")
)
