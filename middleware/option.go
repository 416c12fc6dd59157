package jwtmiddleware

import (
	"errors"
	"net/http"
	"strings"

	jwt "github.com/auth0/go-jwt"
)

// Option configures the JWTMiddleware.
// Returns error for validation failures.
type Option func(*JWTMiddleware) error

// Sentinel errors for configuration validation
var (
	ErrVerifierNil        = errors.New("verifier cannot be nil (use WithVerifier)")
	ErrValidateFuncNil    = errors.New("validate function cannot be nil")
	ErrErrorHandlerNil    = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil  = errors.New("tokenExtractor cannot be nil")
	ErrExclusionUrlsEmpty = errors.New("exclusion URLs list cannot be empty")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrAuthSchemeEmpty    = errors.New("auth scheme cannot be empty")
)

// WithVerifier sets the verifier tokens are checked with (REQUIRED).
//
// Example:
//
//	verifier, err := jwt.NewVerifier(
//	    jwt.WithAlgorithms(resolver, jwt.RS256),
//	    jwt.WithIssuers("https://issuer.example.com/"),
//	    jwt.WithAudiences("my-api"),
//	    jwt.WithExpiryCheck(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	middleware, err := jwtmiddleware.New(
//	    jwtmiddleware.WithVerifier(verifier),
//	)
func WithVerifier(v TokenVerifier) Option {
	return func(m *JWTMiddleware) error {
		if v == nil {
			return ErrVerifierNil
		}
		m.verifier = v
		return nil
	}
}

// WithValidate adds application checks run after a token has been verified.
func WithValidate(fn ValidateFunc) Option {
	return func(m *JWTMiddleware) error {
		if fn == nil {
			return ErrValidateFuncNil
		}
		m.validate = fn
		return nil
	}
}

// WithCredentialsOptional sets whether credentials are optional.
// If set to true, an empty token will be considered valid.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests should have their JWT validated.
//
// Default: true (OPTIONS requests are validated)
func WithValidateOnOptions(value bool) Option {
	return func(m *JWTMiddleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler sets the handler called when errors occur during JWT validation.
// See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *JWTMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor sets the function to extract the JWT from the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *JWTMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionUrls configures URL patterns to exclude from JWT validation.
// URLs can be full URLs or just paths.
func WithExclusionUrls(exclusions []string) Option {
	return func(m *JWTMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionUrlsEmpty
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithRealm sets the realm announced in WWW-Authenticate challenges.
func WithRealm(realm string) Option {
	return func(m *JWTMiddleware) error {
		m.challenge.realm = realm
		return nil
	}
}

// WithAuthSchemes sets the Authorization schemes accepted by the default
// extractor. defaultScheme is also the scheme of challenges.
//
// Default: "Bearer"
func WithAuthSchemes(defaultScheme string, additionalSchemes ...string) Option {
	return func(m *JWTMiddleware) error {
		schemes := append([]string{defaultScheme}, additionalSchemes...)
		for _, scheme := range schemes {
			if strings.TrimSpace(scheme) == "" {
				return ErrAuthSchemeEmpty
			}
		}
		m.schemes = schemes
		m.challenge.scheme = defaultScheme
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
//
// Example:
//
//	middleware, err := jwtmiddleware.New(
//	    jwtmiddleware.WithVerifier(verifier),
//	    jwtmiddleware.WithLogger(slog.Default()),
//	)
func WithLogger(logger jwt.Logger) Option {
	return func(m *JWTMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}
