package formats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/qmuntal/gltf"
)

// ErrTooLarge is returned when a download exceeds MaxDownloadBytes.
var ErrTooLarge = errors.New("model download too large")

// MaxDownloadBytes caps a single fetched file.
const MaxDownloadBytes = 256 << 20

// FetchTimeout bounds one request, body included.
const FetchTimeout = 60 * time.Second

var httpClient = &http.Client{Timeout: FetchTimeout}

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// LoadURL downloads a model and decodes it in memory. The format comes from
// the URL path, or from the content when the path has no known extension.
// Relative glTF buffers are fetched next to the document.
func LoadURL(ctx context.Context, rawURL string) (*Model, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	body, err := fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(u.Path)
	if format == FormatUnknown {
		format = sniffFormat(body)
	}

	var m *Model
	switch format {
	case FormatGLTF:
		doc := new(gltf.Document)
		dec := gltf.NewDecoderFS(bytes.NewReader(body), remoteFS{ctx: ctx, base: u})
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("decoding glTF %s: %w", rawURL, err)
		}
		m, err = FromGLTF(doc)
	case FormatOBJ:
		name := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		m, err = ParseOBJ(bytes.NewReader(body), name)
	case FormatFBX:
		m, err = ParseFBX(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", rawURL, err)
	}
	m.Path = rawURL
	return m, nil
}

func fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	if len(body) > MaxDownloadBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, u)
	}
	return body, nil
}

// sniffFormat recognizes GLB and FBX by magic and glTF JSON by its opening
// brace. Anything else is tried as OBJ text.
func sniffFormat(body []byte) Format {
	switch {
	case bytes.HasPrefix(body, []byte("glTF")):
		return FormatGLTF
	case bytes.HasPrefix(body, []byte(fbxMagic)):
		return FormatFBX
	case bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")):
		return FormatGLTF
	case bytes.Contains(body, []byte("\nv ")) || bytes.HasPrefix(body, []byte("v ")):
		return FormatOBJ
	}
	return FormatUnknown
}

// remoteFS resolves glTF buffer URIs against the document URL.
type remoteFS struct {
	ctx  context.Context
	base *url.URL
}

func (r remoteFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
}

// ReadFile makes fs.ReadFile fetch name relative to the base URL.
func (r remoteFS) ReadFile(name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return fetch(r.ctx, r.base.ResolveReference(ref))
}
