package tier

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Inline payloads are stored as data URIs: "data:<contentType>;base64,<bytes>".
// The form is self-describing (content type travels with the bytes) and
// text-safe, so it round-trips through the record store's TEXT column.

var ErrInvalidInlineData = errors.New("invalid inline payload encoding")

const (
	inlineScheme = "data:"
	inlineMarker = ";base64,"
)

// EncodeInline encodes the payload and its content type into a data URI.
func EncodeInline(contentType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(inlineScheme) + len(contentType) + len(inlineMarker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(inlineScheme)
	b.WriteString(contentType)
	b.WriteString(inlineMarker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DecodeInline reverses EncodeInline, returning the original content type
// and payload bytes.
func DecodeInline(encoded string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(encoded, inlineScheme) {
		return "", nil, ErrInvalidInlineData
	}
	rest := encoded[len(inlineScheme):]

	idx := strings.Index(rest, inlineMarker)
	if idx < 0 {
		return "", nil, ErrInvalidInlineData
	}
	contentType = rest[:idx]

	data, err = base64.StdEncoding.DecodeString(rest[idx+len(inlineMarker):])
	if err != nil {
		return "", nil, ErrInvalidInlineData
	}
	return contentType, data, nil
}
