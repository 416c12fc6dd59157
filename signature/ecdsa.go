package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	jwt "github.com/auth0/go-jwt"
)

// NewECDSASigner returns a signer for ES256, ES384 or ES512. The key must be
// on the curve the algorithm names, and on the WithCurve curve if given.
func NewECDSASigner(alg jwt.Algorithm, privateKey Key, opts ...Option) (*Signer, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	signer, err := newSigner(alg, jwt.FamilyECDSA, privateKey, o)
	if err != nil {
		return nil, err
	}

	if key, ok := signer.key.(*ecdsa.PrivateKey); ok {
		if err := checkCurve(alg, key.Curve, o.curve); err != nil {
			return nil, err
		}
	}

	return signer, nil
}

// NewECDSAVerifier returns a verifier for ECDSA tokens. Only the algorithm
// matching the key's curve is accepted.
func NewECDSAVerifier(publicKey Key, opts ...Option) (*Verifier, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier([]jwt.Family{jwt.FamilyECDSA}, publicKey, o)
	if err != nil {
		return nil, err
	}

	if key, ok := verifier.key.(*ecdsa.PublicKey); ok {
		if o.curve != nil && key.Curve != o.curve {
			return nil, fmt.Errorf("key is on %s, expected %s", key.Curve.Params().Name, o.curve.Params().Name)
		}
		verifier.curve = key.Curve
	}

	return verifier, nil
}

// curveFor returns the curve an ECDSA algorithm is defined on.
func curveFor(alg jwt.Algorithm) elliptic.Curve {
	switch alg {
	case jwt.ES256:
		return elliptic.P256()
	case jwt.ES384:
		return elliptic.P384()
	case jwt.ES512:
		return elliptic.P521()
	default:
		return nil
	}
}

func checkCurve(alg jwt.Algorithm, have, want elliptic.Curve) error {
	if want != nil && have != want {
		return fmt.Errorf("key is on %s, expected %s", have.Params().Name, want.Params().Name)
	}
	if expected := curveFor(alg); have != expected {
		return fmt.Errorf("%s requires %s, key is on %s", alg, expected.Params().Name, have.Params().Name)
	}
	return nil
}
