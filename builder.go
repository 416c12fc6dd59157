package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiry is a conventional token lifetime for use with WithExpiresIn.
const DefaultExpiry = 60 * time.Minute

// Option configures the token assembled by NewUnsigned and Build.
// Options return errors to enable validation during construction.
type Option func(*tokenConfig) error

type tokenConfig struct {
	typ   string
	keyID string

	registered map[string]json.RawMessage
	extras     Claims

	expiresIn time.Duration
	now       func() time.Time
}

// NewUnsigned assembles a header and claim set.
//
// Registered claims are laid out first, in the order iss, sub, aud, exp, nbf,
// iat, jti. Other claims follow in the order they were added.
func NewUnsigned(opts ...Option) (*UnsignedToken, error) {
	cfg := &tokenConfig{
		typ:        DefaultType,
		registered: make(map[string]json.RawMessage),
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if cfg.expiresIn > 0 {
		cfg.registered[ClaimExpiresAt] = numericDate(cfg.now().Add(cfg.expiresIn))
	}

	var claims Claims
	for _, name := range registeredClaims {
		if raw, ok := cfg.registered[name]; ok {
			claims.set(name, raw)
		}
	}
	for _, name := range cfg.extras.keys {
		claims.set(name, cfg.extras.values[name])
	}

	return &UnsignedToken{
		Header: Header{
			Type:  cfg.typ,
			KeyID: cfg.keyID,
		},
		Claims: claims,
	}, nil
}

// Sign signs u with signer. The header algorithm is always the signer's.
func (u *UnsignedToken) Sign(signer Signer) (*Token, error) {
	if signer == nil {
		return nil, ErrNoAlgorithmConfigured
	}

	header := u.Header
	header.Algorithm = signer.Algorithm()

	signingInput, err := Encode(header, u.Claims)
	if err != nil {
		return nil, err
	}

	signature, err := signer.Sign(signingInput)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		header:     header,
		claims:     u.Claims,
		signedData: signingInput,
		signature:  signature,
	}, nil
}

// Build assembles and signs a token in one step.
func Build(signer Signer, opts ...Option) (*Token, error) {
	if signer == nil {
		return nil, ErrNoAlgorithmConfigured
	}

	unsigned, err := NewUnsigned(opts...)
	if err != nil {
		return nil, err
	}

	return unsigned.Sign(signer)
}

// WithIssuer sets the "iss" claim.
func WithIssuer(issuer string) Option {
	return func(c *tokenConfig) error {
		return c.setRegistered(ClaimIssuer, issuer)
	}
}

// WithSubject sets the "sub" claim.
func WithSubject(subject string) Option {
	return func(c *tokenConfig) error {
		return c.setRegistered(ClaimSubject, subject)
	}
}

// WithAudience sets the "aud" claim. A single audience is written as a
// string, several as an array.
func WithAudience(audience ...string) Option {
	return func(c *tokenConfig) error {
		switch len(audience) {
		case 0:
			return errors.New("audience cannot be empty")
		case 1:
			return c.setRegistered(ClaimAudience, audience[0])
		default:
			return c.setRegistered(ClaimAudience, audience)
		}
	}
}

// WithExpiresAt sets the "exp" claim.
func WithExpiresAt(t time.Time) Option {
	return func(c *tokenConfig) error {
		c.expiresIn = 0
		c.registered[ClaimExpiresAt] = numericDate(t)
		return nil
	}
}

// WithExpiresIn sets the "exp" claim to d after the builder's current time.
func WithExpiresIn(d time.Duration) Option {
	return func(c *tokenConfig) error {
		if d <= 0 {
			return errors.New("expiry duration must be positive")
		}
		c.expiresIn = d
		return nil
	}
}

// WithNotBefore sets the "nbf" claim.
func WithNotBefore(t time.Time) Option {
	return func(c *tokenConfig) error {
		c.registered[ClaimNotBefore] = numericDate(t)
		return nil
	}
}

// WithIssuedAt sets the "iat" claim.
func WithIssuedAt(t time.Time) Option {
	return func(c *tokenConfig) error {
		c.registered[ClaimIssuedAt] = numericDate(t)
		return nil
	}
}

// WithID sets the "jti" claim.
func WithID(id string) Option {
	return func(c *tokenConfig) error {
		if id == "" {
			return errors.New("id cannot be empty")
		}
		return c.setRegistered(ClaimID, id)
	}
}

// WithGeneratedID sets the "jti" claim to a random UUID.
func WithGeneratedID() Option {
	return func(c *tokenConfig) error {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		return c.setRegistered(ClaimID, id.String())
	}
}

// WithClaim adds a claim. A registered claim name replaces that claim's
// value in its registered position.
func WithClaim(name string, value any) Option {
	return func(c *tokenConfig) error {
		if name == "" {
			return errors.New("claim name cannot be empty")
		}

		raw, err := marshalValue(value)
		if err != nil {
			return fmt.Errorf("claim %q: %w", name, err)
		}

		if isRegistered(name) {
			if name == ClaimExpiresAt {
				c.expiresIn = 0
			}
			c.registered[name] = raw
			return nil
		}

		c.extras.set(name, raw)
		return nil
	}
}

// WithKeyID sets the "kid" header.
func WithKeyID(keyID string) Option {
	return func(c *tokenConfig) error {
		if keyID == "" {
			return errors.New("key id cannot be empty")
		}
		c.keyID = keyID
		return nil
	}
}

// WithType overrides the "typ" header, which defaults to DefaultType.
func WithType(typ string) Option {
	return func(c *tokenConfig) error {
		if typ == "" {
			return errors.New("type cannot be empty")
		}
		c.typ = typ
		return nil
	}
}

// WithTimeFunc sets the clock WithExpiresIn is measured from.
func WithTimeFunc(now func() time.Time) Option {
	return func(c *tokenConfig) error {
		if now == nil {
			return errors.New("time function cannot be nil")
		}
		c.now = now
		return nil
	}
}

func (c *tokenConfig) setRegistered(name string, value any) error {
	raw, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("claim %q: %w", name, err)
	}
	c.registered[name] = raw
	return nil
}

func isRegistered(name string) bool {
	for _, registered := range registeredClaims {
		if name == registered {
			return true
		}
	}
	return false
}

func numericDate(t time.Time) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(t.Unix(), 10))
}
