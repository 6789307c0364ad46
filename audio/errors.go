// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio format")
	ErrEmptySource    = errors.New("source produced no samples")
	ErrBadChannel     = errors.New("channel index out of range")
)

// FormatError reports a format key that has no registered decoder.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownFormat, e.Format)
}

func (e *FormatError) Unwrap() error { return ErrUnknownFormat }
