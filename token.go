package jwt

import (
	"bytes"

	"github.com/auth0/go-jwt/internal/base64url"
)

// UnsignedToken is a header and claim set waiting for a signature.
type UnsignedToken struct {
	Header Header
	Claims Claims
}

// Token is a signed token, either produced by Sign or decoded by Parse.
type Token struct {
	header     Header
	claims     Claims
	signedData []byte
	signature  []byte
}

// Header returns the token header.
func (t *Token) Header() Header {
	return t.header
}

// Claims returns the token claims.
func (t *Token) Claims() Claims {
	return t.claims
}

// SignedData returns the signing input: the first two compact segments
// joined by a dot, exactly as encoded or received.
func (t *Token) SignedData() []byte {
	out := make([]byte, len(t.signedData))
	copy(out, t.signedData)
	return out
}

// Signature returns the raw signature bytes.
func (t *Token) Signature() []byte {
	out := make([]byte, len(t.signature))
	copy(out, t.signature)
	return out
}

// String returns the compact serialization.
func (t *Token) String() string {
	buf := make([]byte, 0, len(t.signedData)+1+len(t.signature)*4/3+4)
	buf = append(buf, t.signedData...)
	buf = append(buf, '.')
	buf = base64url.AppendEncode(buf, t.signature)
	return string(buf)
}

// Equal reports whether t and other carry the same header, claims and
// signature. The JSON formatting of the signed data is not compared.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.header == other.header &&
		t.claims.Equal(other.claims) &&
		bytes.Equal(t.signature, other.signature)
}
