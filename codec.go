package jwt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auth0/go-jwt/internal/base64url"
)

// Encode serializes header and claims independently and returns the signing
// input: base64url(header) "." base64url(claims).
func Encode(header Header, claims Claims) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to encode claims: %w", err)
	}

	out := base64url.AppendEncode(nil, headerJSON)
	out = append(out, '.')
	out = base64url.AppendEncode(out, claimsJSON)
	return out, nil
}

// Parse decodes a compact token. It does not verify the signature.
//
// The token must have exactly three non-empty segments. A header without an
// "alg" member is malformed. An algorithm outside the supported set is
// accepted here and rejected at verification.
func Parse(compact string) (*Token, error) {
	segments := strings.Split(compact, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}
	for i, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrMalformedToken, i)
		}
	}

	headerJSON, err := base64url.Decode(segments[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}
	if header.Algorithm == "" {
		return nil, fmt.Errorf("%w: header has no alg", ErrMalformedToken)
	}

	claimsJSON, err := base64url.Decode(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: claims: %w", ErrMalformedToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %w", ErrMalformedToken, err)
	}

	signature, err := base64url.Decode(segments[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrMalformedToken, err)
	}

	return &Token{
		header:     header,
		claims:     claims,
		signedData: []byte(compact[:len(segments[0])+1+len(segments[1])]),
		signature:  signature,
	}, nil
}
