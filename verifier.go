package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Verifier checks claim rules and signatures of tokens.
// It is safe for concurrent use.
type Verifier struct {
	verifiers map[Algorithm]SignatureVerifier
	rules     ClaimRules
	logger    Logger
	tracer    trace.Tracer
	clock     func() time.Time

	expiryCheck    bool
	expiryAt       *time.Time
	notBeforeCheck bool
	notBeforeAt    *time.Time
}

// VerifierOption configures a Verifier.
// Options return errors to enable validation during construction.
type VerifierOption func(*Verifier) error

// NewVerifier creates a Verifier. At least one algorithm must be trusted,
// through WithVerifier, WithVerifiers or WithAlgorithms.
//
// Example:
//
//	verifier, err := jwt.NewVerifier(
//	    jwt.WithVerifier(jwt.HS256, hmacVerifier),
//	    jwt.WithIssuers("https://issuer.example.com/"),
//	    jwt.WithAudiences("my-api"),
//	    jwt.WithExpiryCheck(),
//	)
func NewVerifier(opts ...VerifierOption) (*Verifier, error) {
	v := &Verifier{
		verifiers: make(map[Algorithm]SignatureVerifier),
		tracer:    defaultTracer(),
		clock:     time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if len(v.verifiers) == 0 {
		return nil, fmt.Errorf("%w: no trusted algorithms", ErrNoAlgorithmConfigured)
	}

	v.rules.ExpiryTime = v.referenceTime(v.expiryCheck, v.expiryAt)
	v.rules.NotBeforeTime = v.referenceTime(v.notBeforeCheck, v.notBeforeAt)

	return v, nil
}

func (v *Verifier) referenceTime(enabled bool, fixed *time.Time) func() time.Time {
	switch {
	case !enabled:
		return nil
	case fixed != nil:
		t := *fixed
		return func() time.Time { return t }
	default:
		return v.clock
	}
}

// Verify reports whether token satisfies the claim rules and carries a valid
// signature for its algorithm.
//
// Claim rule failures and signature mismatches yield false with a nil error.
// An algorithm without a trusted verifier yields ErrUnsupportedAlgorithm.
func (v *Verifier) Verify(ctx context.Context, token *Token) (bool, error) {
	if token == nil {
		return false, fmt.Errorf("%w: nil token", ErrMalformedToken)
	}

	header := token.Header()
	ctx, span := v.tracer.Start(ctx, "jwt.Verify", trace.WithAttributes(
		AttributeAlgorithm.String(header.Algorithm.String()),
		AttributeKeyID.String(header.KeyID),
	))
	defer span.End()

	if err := ValidateClaims(token.Claims(), v.rules); err != nil {
		if v.logger != nil {
			v.logger.Debug("Token claims rejected", "alg", header.Algorithm, "error", err)
		}
		span.SetAttributes(AttributeResult.String(ResultClaimsInvalid))
		return false, nil
	}

	verifier, ok := v.verifiers[header.Algorithm]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, header.Algorithm)
		if v.logger != nil {
			v.logger.Warn("Token algorithm is not trusted", "alg", header.Algorithm)
		}
		recordError(span, err)
		return false, err
	}

	valid, err := verifier.Verify(ctx, token)
	if err != nil {
		if v.logger != nil {
			v.logger.Error("Signature verification failed", "alg", header.Algorithm, "kid", header.KeyID, "error", err)
		}
		recordError(span, err)
		return false, err
	}

	if !valid {
		if v.logger != nil {
			v.logger.Debug("Token signature rejected", "alg", header.Algorithm, "kid", header.KeyID)
		}
		span.SetAttributes(AttributeResult.String(ResultInvalidSignature))
		return false, nil
	}

	span.SetAttributes(AttributeResult.String(ResultValid))
	return true, nil
}

// CheckClaims applies the verifier's claim rules to token and returns nil or
// the *ValidationError of the first failed rule. Verify reports the same
// failures as false.
func (v *Verifier) CheckClaims(token *Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrMalformedToken)
	}
	return ValidateClaims(token.Claims(), v.rules)
}

// VerifyCompact parses compact and verifies the resulting token. The parsed
// token is returned whenever parsing succeeds.
func (v *Verifier) VerifyCompact(ctx context.Context, compact string) (*Token, bool, error) {
	token, err := Parse(compact)
	if err != nil {
		if v.logger != nil {
			v.logger.Debug("Token could not be parsed", "error", err)
		}
		return nil, false, err
	}

	valid, err := v.Verify(ctx, token)
	return token, valid, err
}

func recordError(span trace.Span, err error) {
	span.SetAttributes(AttributeResult.String(ResultError))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// WithVerifier trusts alg, checking its signatures with verifier.
func WithVerifier(alg Algorithm, verifier SignatureVerifier) VerifierOption {
	return func(v *Verifier) error {
		if !alg.Valid() {
			return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
		}
		if verifier == nil {
			return errors.New("verifier cannot be nil")
		}
		v.verifiers[alg] = verifier
		return nil
	}
}

// WithVerifiers trusts every algorithm in verifiers.
func WithVerifiers(verifiers map[Algorithm]SignatureVerifier) VerifierOption {
	return func(v *Verifier) error {
		for alg, verifier := range verifiers {
			if err := WithVerifier(alg, verifier)(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithAlgorithms trusts each of algs, checking all of them with verifier.
// This suits verifiers that select the key per token, such as a JWKS resolver.
func WithAlgorithms(verifier SignatureVerifier, algs ...Algorithm) VerifierOption {
	return func(v *Verifier) error {
		if len(algs) == 0 {
			return errors.New("at least one algorithm is required")
		}
		for _, alg := range algs {
			if err := WithVerifier(alg, verifier)(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithAudiences requires the "aud" claim to contain one of audiences.
func WithAudiences(audiences ...string) VerifierOption {
	return func(v *Verifier) error {
		if len(audiences) == 0 {
			return errors.New("audiences cannot be empty")
		}
		v.rules.Audiences = append(v.rules.Audiences, audiences...)
		return nil
	}
}

// WithIssuers requires the "iss" claim to be one of issuers.
func WithIssuers(issuers ...string) VerifierOption {
	return func(v *Verifier) error {
		if len(issuers) == 0 {
			return errors.New("issuers cannot be empty")
		}
		v.rules.Issuers = append(v.rules.Issuers, issuers...)
		return nil
	}
}

// WithExpiryCheck requires an "exp" claim that has not passed on the
// verifier's clock.
func WithExpiryCheck() VerifierOption {
	return func(v *Verifier) error {
		v.expiryCheck = true
		v.expiryAt = nil
		return nil
	}
}

// WithExpiryCheckAt requires an "exp" claim that has not passed at t.
func WithExpiryCheckAt(t time.Time) VerifierOption {
	return func(v *Verifier) error {
		v.expiryCheck = true
		v.expiryAt = &t
		return nil
	}
}

// WithNotBeforeCheck requires an "nbf" claim that has been reached on the
// verifier's clock.
func WithNotBeforeCheck() VerifierOption {
	return func(v *Verifier) error {
		v.notBeforeCheck = true
		v.notBeforeAt = nil
		return nil
	}
}

// WithNotBeforeCheckAt requires an "nbf" claim that has been reached at t.
func WithNotBeforeCheckAt(t time.Time) VerifierOption {
	return func(v *Verifier) error {
		v.notBeforeCheck = true
		v.notBeforeAt = &t
		return nil
	}
}

// WithLeeway tolerates clock skew in the expiry and not-before checks.
func WithLeeway(leeway time.Duration) VerifierOption {
	return func(v *Verifier) error {
		if leeway < 0 {
			return errors.New("leeway cannot be negative")
		}
		v.rules.Leeway = leeway
		return nil
	}
}

// WithClock sets the clock used by WithExpiryCheck and WithNotBeforeCheck.
func WithClock(clock func() time.Time) VerifierOption {
	return func(v *Verifier) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		v.clock = clock
		return nil
	}
}

// WithLogger sets an optional logger. Rejections are logged at debug level.
func WithLogger(logger Logger) VerifierOption {
	return func(v *Verifier) error {
		v.logger = logger
		return nil
	}
}

// WithTracer sets the tracer that records a "jwt.Verify" span per call.
func WithTracer(tracer trace.Tracer) VerifierOption {
	return func(v *Verifier) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		v.tracer = tracer
		return nil
	}
}
