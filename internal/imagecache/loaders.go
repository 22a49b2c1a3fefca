package imagecache

import (
	"context"
	"image"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Registered decoders for the asset formats the manifest may reference
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// FSLoader reads refs as slash-separated paths inside FS
type FSLoader struct {
	FS fs.FS
}

// NewFSLoader creates a loader rooted at fsys
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys}
}

// Load implements Loader
func (l *FSLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := l.FS.Open(strings.TrimPrefix(ref, "/"))
	if err != nil {
		return nil, apperr.Wrap(err, "failed to open asset")
	}
	defer f.Close()

	return decode(f)
}

// HTTPLoader fetches refs relative to BaseURL
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPLoader creates a loader for assets served under baseURL
func NewHTTPLoader(baseURL string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Load implements Loader
func (l *HTTPLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	target, err := resolveURL(l.BaseURL, ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to build request")
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to fetch asset")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Newf(apperr.CodeLoadFailure, "unexpected status %d", resp.StatusCode).
			WithMeta("url", target)
	}

	return decode(resp.Body)
}

func resolveURL(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", apperr.Wrap(err, "invalid asset ref")
	}
	if refURL.IsAbs() || base == "" {
		return refURL.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", apperr.Wrap(err, "invalid asset base url")
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to decode image")
	}
	if img.Bounds().Empty() {
		return nil, apperr.Newf(apperr.CodeLoadFailure, "decoded %s image is empty", format)
	}
	return img, nil
}
