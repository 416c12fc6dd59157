// Package base64url implements the unpadded URL-safe base64 alphabet used by
// every segment of a compact JWS.
package base64url

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode returns the unpadded base64url encoding of src.
func Encode(src []byte) string {
	return base64.RawURLEncoding.EncodeToString(src)
}

// AppendEncode appends the unpadded base64url encoding of src to dst.
func AppendEncode(dst, src []byte) []byte {
	n := base64.RawURLEncoding.EncodedLen(len(src))
	start := len(dst)
	dst = append(dst, make([]byte, n)...)
	base64.RawURLEncoding.Encode(dst[start:], src)
	return dst
}

// Decode decodes a base64url segment. Trailing padding is tolerated even
// though producers are expected to omit it.
func Decode(segment string) ([]byte, error) {
	trimmed := strings.TrimRight(segment, "=")
	if len(segment)-len(trimmed) > 2 {
		return nil, fmt.Errorf("invalid base64url padding")
	}

	for i := 0; i < len(trimmed); i++ {
		if !isAlphabet(trimmed[i]) {
			return nil, fmt.Errorf("illegal base64url data at input byte %d", i)
		}
	}

	out, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64url: %w", err)
	}

	return out, nil
}

func isAlphabet(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' || c == '-' || c == '_'
}
