package signature

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	jwt "github.com/auth0/go-jwt"
)

// Registry binds algorithms to signers and verifiers at configuration time.
//
// Signing and verification are configured independently: a registry may
// verify a narrower set of algorithms than it signs, so that a verifier
// built from Verifiers trusts only what was registered for verification.
type Registry struct {
	mu        sync.RWMutex
	opts      []Option
	signers   map[jwt.Algorithm]*Signer
	verifiers map[jwt.Algorithm]jwt.SignatureVerifier
}

// NewRegistry returns an empty registry. opts apply to every signer and
// verifier it builds.
func NewRegistry(opts ...Option) (*Registry, error) {
	if _, err := newOptions(opts); err != nil {
		return nil, fmt.Errorf("invalid option: %w", err)
	}

	return &Registry{
		opts:      opts,
		signers:   make(map[jwt.Algorithm]*Signer),
		verifiers: make(map[jwt.Algorithm]jwt.SignatureVerifier),
	}, nil
}

// Signer builds a signer for alg from key and registers it.
func (r *Registry) Signer(alg jwt.Algorithm, key Key) (*Signer, error) {
	var (
		signer *Signer
		err    error
	)
	switch alg.Family() {
	case jwt.FamilyHMAC:
		signer, err = NewHMACSigner(alg, key, r.opts...)
	case jwt.FamilyPKCS1, jwt.FamilyPSS:
		signer, err = NewRSASigner(alg, key, r.opts...)
	case jwt.FamilyECDSA:
		signer, err = NewECDSASigner(alg, key, r.opts...)
	default:
		return nil, fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.signers[alg] = signer
	r.mu.Unlock()

	return signer, nil
}

// LookupSigner returns the signer registered for alg.
func (r *Registry) LookupSigner(alg jwt.Algorithm) (*Signer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	signer, ok := r.signers[alg]
	if !ok {
		return nil, fmt.Errorf("%w: no signer for %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	return signer, nil
}

// Verifier builds a verifier for alg from key and registers it. The verifier
// accepts only alg's family.
func (r *Registry) Verifier(alg jwt.Algorithm, key Key) (*Verifier, error) {
	var (
		verifier *Verifier
		err      error
	)
	switch alg.Family() {
	case jwt.FamilyHMAC:
		verifier, err = NewHMACVerifier(key, r.opts...)
	case jwt.FamilyPKCS1:
		verifier, err = NewPKCS1Verifier(key, r.opts...)
	case jwt.FamilyPSS:
		verifier, err = NewPSSVerifier(key, r.opts...)
	case jwt.FamilyECDSA:
		verifier, err = NewECDSAVerifier(key, append(slices.Clone(r.opts), WithCurve(curveFor(alg)))...)
	default:
		return nil, fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.verifiers[alg] = verifier
	r.mu.Unlock()

	return verifier, nil
}

// Register trusts alg with an externally built verifier, such as a JWKS
// resolver.
func (r *Registry) Register(alg jwt.Algorithm, verifier jwt.SignatureVerifier) error {
	if !alg.Valid() {
		return fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	if verifier == nil {
		return errors.New("verifier cannot be nil")
	}

	r.mu.Lock()
	r.verifiers[alg] = verifier
	r.mu.Unlock()

	return nil
}

// Verifiers returns a copy of the registered verification map, suitable for
// jwt.WithVerifiers.
func (r *Registry) Verifiers() map[jwt.Algorithm]jwt.SignatureVerifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.verifiers)
}
