// SPDX-License-Identifier: EPL-2.0

// Package loader fetches raw encoded audio bytes from local files, file://
// and http(s):// URLs, and data: URLs.
package loader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrBadDataURL        = errors.New("malformed data url")
	ErrHTTPStatus        = errors.New("unexpected http status")
	ErrTooLarge          = errors.New("resource exceeds size limit")
)

// Resource is fetched content plus the MIME type reported by its origin,
// if any.
type Resource struct {
	Data []byte
	MIME string
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Resource, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) (*Resource, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	return f(ctx, rawURL)
}

// Default dispatches on the URL scheme. Strings without a scheme are
// treated as local paths.
type Default struct {
	Client *http.Client
	// MaxSize caps http bodies; 0 means no limit.
	MaxSize int64
}

func NewDefault() *Default {
	return &Default{Client: &http.Client{}}
}

func (d *Default) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	if IsDataURL(rawURL) {
		mt, data, err := ParseDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		return &Resource{Data: data, MIME: mt}, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// no scheme, or a windows drive letter
		return readFile(rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return d.fetchHTTP(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func readFile(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Resource{Data: data}, nil
}

func (d *Default) fetchHTTP(ctx context.Context, rawURL string) (*Resource, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, res.Status)
	}

	var body io.Reader = res.Body
	if d.MaxSize > 0 {
		body = io.LimitReader(res.Body, d.MaxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if d.MaxSize > 0 && int64(len(data)) > d.MaxSize {
		return nil, fmt.Errorf("%w: %s over %d bytes", ErrTooLarge, rawURL, d.MaxSize)
	}

	mt, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	return &Resource{Data: data, MIME: mt}, nil
}

func IsDataURL(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURL decodes a data: URL. The payload may be base64 or percent
// encoded; the media type defaults to text/plain as usual.
func ParseDataURL(s string) (mediaType string, data []byte, err error) {
	if !IsDataURL(s) {
		return "", nil, ErrBadDataURL
	}

	header, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrBadDataURL)
	}

	isBase64 := false
	params := strings.Split(header, ";")
	if last := params[len(params)-1]; strings.EqualFold(last, "base64") {
		isBase64 = true
		params = params[:len(params)-1]
	}

	mediaType = strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		payload, err = url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
		}
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some producers drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
		}
		return mediaType, data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	return mediaType, []byte(text), nil
}
