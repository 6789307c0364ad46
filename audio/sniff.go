// SPDX-License-Identifier: EPL-2.0

package audio

import "bytes"

// Sniff guesses the container format of encoded audio from its leading
// bytes. The returned key matches the keys decoders are registered under.
func Sniff(data []byte) (string, bool) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav", true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return "aiff", true
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return "ogg", true
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return "mp3", true
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return "mp3", true
	}

	return "", false
}

// FormatForMIME maps an audio MIME type to a format key.
func FormatForMIME(mime string) (string, bool) {
	switch NormalizeFormat(mime) {
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return "wav", true
	case "audio/mpeg", "audio/mp3", "audio/mpeg3", "audio/x-mpeg-3":
		return "mp3", true
	case "audio/ogg", "audio/vorbis", "application/ogg", "audio/x-vorbis+ogg":
		return "ogg", true
	case "audio/aiff", "audio/x-aiff":
		return "aiff", true
	}

	return "", false
}
