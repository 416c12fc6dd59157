package jwtgrpc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	jwt "github.com/auth0/go-jwt"
)

type config struct {
	tokenExtractor   TokenExtractor
	exclusionChecker func(method string) bool
	errorHandler     ErrorHandler
	logger           jwt.Logger
	registerer       prometheus.Registerer
}

// Option configures an Interceptor.
type Option func(*config) error

// WithTokenExtractor sets how the token is read from the call.
//
// Default: MetadataTokenExtractor()
func WithTokenExtractor(extractor TokenExtractor) Option {
	return func(cfg *config) error {
		if extractor == nil {
			return errors.New("token extractor cannot be nil")
		}
		cfg.tokenExtractor = extractor
		return nil
	}
}

// WithExcludedMethods skips authentication for the given full method names,
// such as "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(cfg *config) error {
		if len(methods) == 0 {
			return errors.New("excluded methods cannot be empty")
		}
		set := make(map[string]struct{}, len(methods))
		for _, m := range methods {
			set[m] = struct{}{}
		}
		cfg.exclusionChecker = func(method string) bool {
			_, ok := set[method]
			return ok
		}
		return nil
	}
}

// WithExclusionChecker skips authentication for methods checker accepts.
func WithExclusionChecker(checker func(method string) bool) Option {
	return func(cfg *config) error {
		if checker == nil {
			return errors.New("exclusion checker cannot be nil")
		}
		cfg.exclusionChecker = checker
		return nil
	}
}

// WithErrorHandler sets how failures are turned into gRPC errors.
//
// Default: DefaultErrorHandler
func WithErrorHandler(handler ErrorHandler) Option {
	return func(cfg *config) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		cfg.errorHandler = handler
		return nil
	}
}

// WithLogger sets the logger of the interceptor.
func WithLogger(logger jwt.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRegisterer registers the jwt_grpc_requests_total counter on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *config) error {
		if reg == nil {
			return errors.New("registerer cannot be nil")
		}
		cfg.registerer = reg
		return nil
	}
}
