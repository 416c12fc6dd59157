package signature

import (
	jwt "github.com/auth0/go-jwt"
)

// NewRSASigner returns a signer for an RS* (PKCS#1 v1.5) or PS* (PSS)
// algorithm.
func NewRSASigner(alg jwt.Algorithm, privateKey Key, opts ...Option) (*Signer, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	family := alg.Family()
	if family != jwt.FamilyPSS {
		family = jwt.FamilyPKCS1
	}
	return newSigner(alg, family, privateKey, o)
}

// NewPKCS1Verifier returns a verifier for RS256, RS384 and RS512 tokens.
func NewPKCS1Verifier(publicKey Key, opts ...Option) (*Verifier, error) {
	return newRSAVerifier([]jwt.Family{jwt.FamilyPKCS1}, publicKey, opts)
}

// NewPSSVerifier returns a verifier for PS256, PS384 and PS512 tokens.
func NewPSSVerifier(publicKey Key, opts ...Option) (*Verifier, error) {
	return newRSAVerifier([]jwt.Family{jwt.FamilyPSS}, publicKey, opts)
}

// NewRSAVerifier returns a verifier accepting both RSA schemes. The scheme
// is chosen per token from its "alg" header.
func NewRSAVerifier(publicKey Key, opts ...Option) (*Verifier, error) {
	return newRSAVerifier([]jwt.Family{jwt.FamilyPKCS1, jwt.FamilyPSS}, publicKey, opts)
}

func newRSAVerifier(families []jwt.Family, publicKey Key, opts []Option) (*Verifier, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return newVerifier(families, publicKey, o)
}
