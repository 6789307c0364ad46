// SPDX-License-Identifier: EPL-2.0

package graph

import "errors"

var (
	ErrUnknownFilterType = errors.New("unknown filter type")
	ErrAlreadyStarted    = errors.New("buffer source already started")
	ErrNotStarted        = errors.New("buffer source not started")
	ErrNoBuffer          = errors.New("buffer source has no buffer")
	ErrBadFFTSize        = errors.New("fft size must be a power of two between 32 and 32768")
	ErrBadDecibelRange   = errors.New("min decibels must be below max decibels")
)
