package jwtmiddleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jwt "github.com/auth0/go-jwt"
)

// TokenVerifier parses and verifies a compact token. *jwt.Verifier
// satisfies it.
type TokenVerifier interface {
	VerifyCompact(ctx context.Context, compact string) (*jwt.Token, bool, error)
}

// ClaimsChecker is implemented by verifiers that can explain a rejection
// caused by claim rules. *jwt.Verifier satisfies it.
type ClaimsChecker interface {
	CheckClaims(token *jwt.Token) error
}

// ValidateFunc runs application checks on a verified token. A non-nil error
// rejects the request as an invalid token.
type ValidateFunc func(ctx context.Context, token *jwt.Token) error

// ExclusionURLHandler is a function that takes in a http.Request and returns
// true if the request should be excluded from JWT validation.
type ExclusionURLHandler func(r *http.Request) bool

// JWTMiddleware authenticates requests with a bearer token.
type JWTMiddleware struct {
	verifier            TokenVerifier
	validate            ValidateFunc
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	validateOnOptions   bool
	credentialsOptional bool
	exclusionURLHandler ExclusionURLHandler
	challenge           challenge
	schemes             []string
	logger              jwt.Logger
}

// New constructs a new JWTMiddleware instance with the supplied options.
// WithVerifier is required.
//
// Example:
//
//	middleware, err := jwtmiddleware.New(
//	    jwtmiddleware.WithVerifier(verifier),
//	    jwtmiddleware.WithRealm("my-api"),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*JWTMiddleware, error) {
	m := &JWTMiddleware{
		validateOnOptions: true,
		challenge:         challenge{scheme: DefaultAuthScheme},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if m.verifier == nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", ErrVerifierNil)
	}

	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		if len(m.schemes) > 0 {
			m.tokenExtractor = SchemeTokenExtractor(m.schemes...)
		} else {
			m.tokenExtractor = AuthHeaderTokenExtractor
		}
	}

	return m, nil
}

// CheckToken decides whether compact authenticates a request.
//
// An empty token yields ErrJWTMissing, or nil and nil when credentials are
// optional. Tokens that are malformed, carry an untrusted algorithm, have no
// usable key or fail verification yield an error matching ErrJWTInvalid.
// When the verifier is a ClaimsChecker, a claim rule failure is kept as the
// *jwt.ValidationError cause.
// Other verifier errors are returned as is.
func (m *JWTMiddleware) CheckToken(ctx context.Context, compact string) (*jwt.Token, error) {
	if compact == "" {
		if m.credentialsOptional {
			return nil, nil
		}
		return nil, ErrJWTMissing
	}

	token, valid, err := m.verifier.VerifyCompact(ctx, compact)
	if err != nil {
		if isRejection(err) {
			return nil, &invalidError{details: err}
		}
		return nil, err
	}
	if !valid {
		return nil, &invalidError{details: m.rejection(token)}
	}

	if m.validate != nil {
		if err := m.validate(ctx, token); err != nil {
			return nil, &invalidError{details: err}
		}
	}

	return token, nil
}

// rejection returns the claim rule a rejected token broke, when the
// verifier can tell, and errTokenRejected otherwise.
func (m *JWTMiddleware) rejection(token *jwt.Token) error {
	checker, ok := m.verifier.(ClaimsChecker)
	if !ok || token == nil {
		return errTokenRejected
	}
	if err := checker.CheckClaims(token); errors.Is(err, jwt.ErrClaimsInvalid) {
		return err
	}
	return errTokenRejected
}

func isRejection(err error) bool {
	for _, target := range []error{
		jwt.ErrMalformedToken,
		jwt.ErrUnsupportedAlgorithm,
		jwt.ErrNoMatchingKey,
		jwt.ErrAmbiguousKey,
		jwt.ErrClaimsInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Extract runs the configured token extractor.
func (m *JWTMiddleware) Extract(r *http.Request) (string, error) {
	return m.tokenExtractor(r)
}

// Skip reports whether r bypasses authentication, either through the
// exclusion list or because it is an OPTIONS request that is not validated.
func (m *JWTMiddleware) Skip(r *http.Request) bool {
	if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
		return true
	}
	return !m.validateOnOptions && r.Method == http.MethodOptions
}

// Challenge returns the WWW-Authenticate value sent when authentication is
// required.
func (m *JWTMiddleware) Challenge() string {
	return m.challenge.header("", "")
}

// Authenticate extracts the token of r and checks it with CheckToken. It
// returns nil and nil for a request without a token when credentials are
// optional.
func (m *JWTMiddleware) Authenticate(r *http.Request) (*jwt.Token, error) {
	compact, err := m.tokenExtractor(r)
	if err != nil {
		// This is not ErrJWTMissing because an error here means that the
		// tokenExtractor had an error and _not_ that the token was missing.
		if m.logger != nil {
			m.logger.Warn("failed to extract token from request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		return nil, fmt.Errorf("error extracting token: %w", err)
	}

	token, err := m.CheckToken(r.Context(), compact)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("JWT validation failed",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		return nil, err
	}
	return token, nil
}

// HandleError answers r with the configured error handler. The challenge of
// the middleware travels in the request context.
func (m *JWTMiddleware) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	m.errorHandler(w, r.WithContext(withChallenge(r.Context(), m.challenge)), err)
}

// CheckJWT is the main JWTMiddleware function which performs the main logic. It
// is passed a http.Handler which will be called if the JWT passes validation.
func (m *JWTMiddleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skip(r) {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.Authenticate(r)
		if err != nil {
			m.HandleError(w, r, err)
			return
		}

		if token == nil {
			if m.logger != nil {
				m.logger.Debug("no credentials provided, continuing without token (credentials optional)")
			}
			next.ServeHTTP(w, r)
			return
		}

		if m.logger != nil {
			m.logger.Debug("JWT validation successful, setting token in context")
		}
		next.ServeHTTP(w, r.WithContext(SetToken(r.Context(), token)))
	})
}
