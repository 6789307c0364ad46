// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"
	"fmt"
)

var (
	ErrDestroyed         = errors.New("already destroyed")
	ErrEffectOwned       = errors.New("effect already belongs to a chain")
	ErrNotChild          = errors.New("not a child of this group")
	ErrRootGroup         = errors.New("the root group cannot be destroyed or re-parented")
	ErrAlreadyRegistered = errors.New("sound id already registered with a different source")
	ErrUnknownSound      = errors.New("unknown sound id")
	ErrNoSupportedSource = errors.New("no supported source")
	ErrEngineClosed      = errors.New("engine closed")
	ErrNilSource         = errors.New("nil source")
)

// OwnershipError reports the index of an effect that is already owned by
// another chain, or listed twice.
type OwnershipError struct {
	Index int
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("effect %d: %s", e.Index, ErrEffectOwned)
}

func (e *OwnershipError) Unwrap() error { return ErrEffectOwned }
