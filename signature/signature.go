package signature

import (
	"context"
	"crypto/elliptic"
	"fmt"
	"slices"

	jwt "github.com/auth0/go-jwt"
)

// Signer signs with one algorithm and one decoded private key.
type Signer struct {
	alg      jwt.Algorithm
	key      any
	provider Provider
}

func newSigner(alg jwt.Algorithm, family jwt.Family, key Key, o *options) (*Signer, error) {
	if alg.Family() != family {
		return nil, fmt.Errorf("%w: %q is not a %s algorithm", jwt.ErrUnsupportedAlgorithm, alg, family)
	}

	decoded, err := o.provider.DecodePrivateKey(family, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s signing key: %w", alg, err)
	}

	return &Signer{alg: alg, key: decoded, provider: o.provider}, nil
}

// Algorithm implements jwt.Signer.
func (s *Signer) Algorithm() jwt.Algorithm {
	return s.alg
}

// Sign implements jwt.Signer.
func (s *Signer) Sign(signingInput []byte) ([]byte, error) {
	return s.provider.Sign(s.alg, s.key, signingInput)
}

// Verifier checks signatures made with one decoded public key or secret.
// It accepts tokens of the families it was built for and takes the digest
// from each token's "alg" header.
type Verifier struct {
	families []jwt.Family
	key      any
	curve    elliptic.Curve
	provider Provider
}

func newVerifier(families []jwt.Family, key Key, o *options) (*Verifier, error) {
	decoded, err := o.provider.DecodePublicKey(families[0], key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s verification key: %w", families[0], err)
	}

	return &Verifier{families: families, key: decoded, provider: o.provider}, nil
}

// Families returns the algorithm families v accepts.
func (v *Verifier) Families() []jwt.Family {
	return slices.Clone(v.families)
}

// Verify implements jwt.SignatureVerifier.
func (v *Verifier) Verify(_ context.Context, token *jwt.Token) (bool, error) {
	alg := token.Header().Algorithm
	if !alg.Valid() || !slices.Contains(v.families, alg.Family()) {
		return false, fmt.Errorf("%w: %q for %v key", jwt.ErrUnsupportedAlgorithm, alg, v.families)
	}

	if v.curve != nil {
		if want := curveFor(alg); want != v.curve {
			return false, fmt.Errorf("%w: %q with %s key", jwt.ErrUnsupportedAlgorithm, alg, v.curve.Params().Name)
		}
	}

	return v.provider.Verify(alg, v.key, token.SignedData(), token.Signature())
}
