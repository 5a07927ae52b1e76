// SPDX-License-Identifier: MIT

// Package errs holds the error kinds shared across the analysis and
// playback packages. Callers wrap them with fmt.Errorf("...: %w", err)
// and match with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidInput reports a bad sample rate, an empty or too short
	// signal, or a non-positive window length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateWindow reports a window whose maximum is zero, which
	// cannot be normalized to a peak amplitude.
	ErrDegenerateWindow = errors.New("degenerate window")

	// ErrPlaybackUnavailable reports media the player or file source
	// could not open or decode.
	ErrPlaybackUnavailable = errors.New("playback unavailable")
)
