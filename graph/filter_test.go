// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"errors"
	"testing"
)

func TestParseFilterType(t *testing.T) {
	t.Parallel()

	for ft := LowPass; ft <= AllPass; ft++ {
		got, err := ParseFilterType(ft.String())
		if err != nil || got != ft {
			t.Errorf("ParseFilterType(%q) = (%v, %v), want %v", ft.String(), got, err, ft)
		}
	}

	if got, _ := ParseFilterType(" HighShelf "); got != HighShelf {
		t.Errorf("ParseFilterType is case sensitive: got %v", got)
	}

	if _, err := ParseFilterType("comb"); !errors.Is(err, ErrUnknownFilterType) {
		t.Errorf("ParseFilterType(comb) error = %v, want ErrUnknownFilterType", err)
	}

	if s := FilterType(42).String(); s != "FilterType(42)" {
		t.Errorf("String() = %q", s)
	}
}
