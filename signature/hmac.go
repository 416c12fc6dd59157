package signature

import (
	jwt "github.com/auth0/go-jwt"
)

// NewHMACSigner returns a signer for HS256, HS384 or HS512.
func NewHMACSigner(alg jwt.Algorithm, secret Key, opts ...Option) (*Signer, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return newSigner(alg, jwt.FamilyHMAC, secret, o)
}

// NewHMACVerifier returns a verifier for HS256, HS384 and HS512 tokens
// signed with secret.
func NewHMACVerifier(secret Key, opts ...Option) (*Verifier, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return newVerifier([]jwt.Family{jwt.FamilyHMAC}, secret, o)
}
