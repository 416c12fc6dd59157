package signature

import (
	"crypto/elliptic"
	"errors"
)

// Option configures a signer or verifier constructor.
// Options return errors to enable validation during construction.
type Option func(*options) error

type options struct {
	provider Provider
	curve    elliptic.Curve
}

func newOptions(opts []Option) (*options, error) {
	o := &options{provider: NewProvider()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithProvider sets the cryptographic provider. It defaults to NewProvider().
func WithProvider(provider Provider) Option {
	return func(o *options) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		o.provider = provider
		return nil
	}
}

// WithCurve requires an ECDSA key to be on curve.
func WithCurve(curve elliptic.Curve) Option {
	return func(o *options) error {
		if curve == nil {
			return errors.New("curve cannot be nil")
		}
		o.curve = curve
		return nil
	}
}
