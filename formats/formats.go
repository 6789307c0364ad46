// SPDX-License-Identifier: EPL-2.0

// Package formats wires the bundled decoders into an audio.Registry.
package formats

import (
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/aiff"
	"github.com/ik5/audgraph/formats/mp3"
	"github.com/ik5/audgraph/formats/vorbis"
	"github.com/ik5/audgraph/formats/wav"
)

// DefaultRegistry returns a registry holding every bundled decoder. The
// registration order is the preference order used when picking one URL out
// of several candidates.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("wav", wav.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})

	return r
}
