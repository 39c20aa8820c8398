package stager

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// Uploader is the minimal staging capability: write bytes somewhere the
// inference provider can fetch them and hand back that URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// dataURLRe matches data:<mime>;base64,<payload>.
var dataURLRe = regexp.MustCompile(`^data:([a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*/[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+-]*);base64,(.+)$`)

// IsDataURL reports whether ref is an inline base64 data URL rather than a
// fetchable address.
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// Decode splits a base64 data URL into its declared content type and raw
// bytes. Malformed input fails here, before any network call is attempted.
func Decode(ref string) (contentType string, data []byte, err error) {
	m := dataURLRe.FindStringSubmatch(ref)
	if m == nil {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	data, err = base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return m[1], data, nil
}

// ExtFromMIME infers a filename extension from a declared image MIME type,
// falling back to png when the type is absent or unrecognized.
func ExtFromMIME(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/svg+xml":
		return "svg"
	}
	if i := strings.IndexByte(contentType, '/'); i >= 0 && i+1 < len(contentType) {
		sub := contentType[i+1:]
		if ok, _ := regexp.MatchString(`^[a-z0-9]+$`, sub); ok {
			return sub
		}
	}
	return "png"
}

// Resolve turns the caller-supplied image reference into a URL the provider
// can fetch. Direct URLs pass through unchanged with no network call; inline
// data is decoded and written via the Uploader.
func Resolve(ctx context.Context, ref string, up Uploader) (string, error) {
	if !IsDataURL(ref) {
		return ref, nil
	}
	contentType, data, err := Decode(ref)
	if err != nil {
		return "", err
	}
	return up.Upload(ctx, data, contentType)
}
