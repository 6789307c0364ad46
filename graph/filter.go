// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"strings"
)

type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
	LowShelf
	HighShelf
	Peaking
	Notch
	AllPass
)

var filterNames = [...]string{
	LowPass:   "lowpass",
	HighPass:  "highpass",
	BandPass:  "bandpass",
	LowShelf:  "lowshelf",
	HighShelf: "highshelf",
	Peaking:   "peaking",
	Notch:     "notch",
	AllPass:   "allpass",
}

func (t FilterType) String() string {
	if t < 0 || int(t) >= len(filterNames) {
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
	return filterNames[t]
}

// ParseFilterType accepts the lower-case names returned by String.
func ParseFilterType(s string) (FilterType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range filterNames {
		if name == s {
			return FilterType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilterType, s)
}
