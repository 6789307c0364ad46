// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audgraph/formats/vorbis"
)

// ExampleDecoder_Decode_errorHandling shows error handling for invalid data.
func ExampleDecoder_Decode_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(bytes.NewReader([]byte("not an ogg file")))
	fmt.Println(errors.Is(err, vorbis.ErrNotVorbisFile))

	// Output:
	// true
}
