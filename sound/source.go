// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/loader"
	"lukechampine.com/blake3"
)

// Source describes where a Sample's audio comes from. The variants are
// Bytes, Decoded, URL, URLCandidates and URLByExtension.
type Source interface {
	isSource()
}

// Bytes is encoded audio already in memory. Format may be empty, in which
// case it is detected from the data.
type Bytes struct {
	Data   []byte
	Format string
}

// Decoded is a buffer that needs no decoding.
type Decoded struct {
	Buffer *audio.Buffer
}

// URL is a single location: a path, a file://, http(s):// or data: URL.
type URL string

// URLCandidates picks the first URL whose extension has a decoder.
type URLCandidates []string

// URLByExtension maps extensions to URLs. The engine's decoder preference
// order decides which one is used.
type URLByExtension map[string]string

func (Bytes) isSource()          {}
func (Decoded) isSource()        {}
func (URL) isSource()            {}
func (URLCandidates) isSource()  {}
func (URLByExtension) isSource() {}

// request is a resolved source: a canonical id plus what is needed to
// produce the buffer.
type request struct {
	id     string
	format string
	url    string
	data   []byte
	buffer *audio.Buffer
}

func contentID(prefix string, data []byte) string {
	sum := blake3.Sum256(data)
	return prefix + hex.EncodeToString(sum[:])
}

// urlFormat is the extension of a URL's path, without query or fragment.
func urlFormat(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	return audio.NormalizeFormat(path.Ext(p))
}

// resolve maps a source to a buffer request. It does no I/O.
func resolve(src Source, decoders *audio.Registry) (request, error) {
	switch s := src.(type) {
	case Bytes:
		if len(s.Data) == 0 {
			return request{}, fmt.Errorf("%w: empty bytes", ErrNoSupportedSource)
		}
		format := audio.NormalizeFormat(s.Format)
		if format == "" {
			format, _ = audio.Sniff(s.Data)
		}
		return request{id: contentID("bytes:", s.Data), format: format, data: s.Data}, nil

	case Decoded:
		if s.Buffer == nil {
			return request{}, ErrNilSource
		}
		return request{id: fmt.Sprintf("decoded:%p", s.Buffer), buffer: s.Buffer}, nil

	case URL:
		return resolveURL(string(s))

	case URLCandidates:
		for _, u := range s {
			if loader.IsDataURL(u) || decoders.Supports(urlFormat(u)) {
				return resolveURL(u)
			}
		}
		return request{}, fmt.Errorf("%w: none of %d candidates", ErrNoSupportedSource, len(s))

	case URLByExtension:
		byExt := make(map[string]string, len(s))
		for ext, u := range s {
			byExt[audio.NormalizeFormat(ext)] = u
		}
		for _, ext := range decoders.Formats() {
			if u, ok := byExt[ext]; ok {
				r, err := resolveURL(u)
				if r.format == "" {
					r.format = ext
				}
				return r, err
			}
		}
		return request{}, fmt.Errorf("%w: no decoder for any of %d extensions", ErrNoSupportedSource, len(s))

	case nil:
		return request{}, ErrNilSource
	}

	return request{}, fmt.Errorf("%w: %T", ErrNoSupportedSource, src)
}

func resolveURL(u string) (request, error) {
	if strings.TrimSpace(u) == "" {
		return request{}, fmt.Errorf("%w: empty url", ErrNoSupportedSource)
	}

	if loader.IsDataURL(u) {
		mt, data, err := loader.ParseDataURL(u)
		if err != nil {
			return request{}, err
		}
		format, ok := audio.FormatForMIME(mt)
		if !ok {
			format, _ = audio.Sniff(data)
		}
		return request{id: contentID("data:", data), format: format, data: data}, nil
	}

	return request{id: u, format: urlFormat(u), url: u}, nil
}
