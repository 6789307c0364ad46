// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"
	"strings"
	"testing"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	decoders := formats.DefaultRegistry()
	buf := audio.NewBuffer(1, 10, 8000)

	tests := []struct {
		name       string
		src        Source
		wantID     string
		wantFormat string
		wantURL    string
	}{
		{
			name:       "plain url",
			src:        URL("sounds/hit.MP3"),
			wantID:     "sounds/hit.MP3",
			wantFormat: "mp3",
			wantURL:    "sounds/hit.MP3",
		},
		{
			name:       "url with query",
			src:        URL("https://cdn.example/a/b.ogg?v=3#t"),
			wantID:     "https://cdn.example/a/b.ogg?v=3#t",
			wantFormat: "ogg",
			wantURL:    "https://cdn.example/a/b.ogg?v=3#t",
		},
		{
			name:       "first supported candidate",
			src:        URLCandidates{"a.flac", "b.wav", "c.mp3"},
			wantID:     "b.wav",
			wantFormat: "wav",
			wantURL:    "b.wav",
		},
		{
			name:       "extension map follows decoder order",
			src:        URLByExtension{"wav": "x.wav", ".mp3": "x.mp3", "flac": "x.flac"},
			wantID:     "x.mp3",
			wantFormat: "mp3",
			wantURL:    "x.mp3",
		},
		{
			name:       "extension map with extensionless url",
			src:        URLByExtension{"ogg": "https://host/stream"},
			wantID:     "https://host/stream",
			wantFormat: "ogg",
			wantURL:    "https://host/stream",
		},
		{
			name:       "sniffed bytes",
			src:        Bytes{Data: []byte("RIFF\x00\x00\x00\x00WAVEfmt ")},
			wantID:     "bytes:",
			wantFormat: "wav",
		},
		{
			name:       "data url",
			src:        URL("data:audio/mpeg;base64,SUQz"),
			wantID:     "data:",
			wantFormat: "mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := resolve(tt.src, decoders)
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if strings.HasSuffix(tt.wantID, ":") {
				if !strings.HasPrefix(req.id, tt.wantID) || len(req.id) != len(tt.wantID)+64 {
					t.Errorf("id = %q, want %s<blake3 hex>", req.id, tt.wantID)
				}
			} else if req.id != tt.wantID {
				t.Errorf("id = %q, want %q", req.id, tt.wantID)
			}
			if req.format != tt.wantFormat {
				t.Errorf("format = %q, want %q", req.format, tt.wantFormat)
			}
			if req.url != tt.wantURL {
				t.Errorf("url = %q, want %q", req.url, tt.wantURL)
			}
		})
	}

	req, err := resolve(Decoded{Buffer: buf}, decoders)
	if err != nil || req.buffer != buf || !strings.HasPrefix(req.id, "decoded:") {
		t.Errorf("resolve(Decoded) = %+v, %v", req, err)
	}
}

func TestResolve_SameContentSameID(t *testing.T) {
	t.Parallel()

	decoders := formats.DefaultRegistry()
	a, _ := resolve(Bytes{Data: []byte("abc"), Format: "wav"}, decoders)
	b, _ := resolve(Bytes{Data: []byte("abc")}, decoders)
	c, _ := resolve(Bytes{Data: []byte("abd")}, decoders)

	if a.id != b.id {
		t.Error("equal bytes resolved to different ids")
	}
	if a.id == c.id {
		t.Error("different bytes resolved to the same id")
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	decoders := formats.DefaultRegistry()
	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"nil", nil, ErrNilSource},
		{"nil buffer", Decoded{}, ErrNilSource},
		{"empty bytes", Bytes{}, ErrNoSupportedSource},
		{"empty url", URL("  "), ErrNoSupportedSource},
		{"no candidate", URLCandidates{"a.flac", "b.mid"}, ErrNoSupportedSource},
		{"no extension", URLByExtension{"flac": "a.flac"}, ErrNoSupportedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := resolve(tt.src, decoders); !errors.Is(err, tt.want) {
				t.Errorf("resolve() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := resolve(URL("data:audio/wav;base64,!!!"), decoders); err == nil {
		t.Error("resolve(bad data url) error = nil")
	}
}
