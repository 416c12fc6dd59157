// Package jwtgrpc authenticates gRPC calls with a JWT carried in metadata.
//
//	middleware, err := jwtmiddleware.New(jwtmiddleware.WithVerifier(verifier))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interceptor, err := jwtgrpc.New(middleware,
//	    jwtgrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// Handlers read the verified token with jwtmiddleware.GetToken.
package jwtgrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	jwt "github.com/auth0/go-jwt"
	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

// ErrorHandler converts an authentication failure into the error returned to
// the client.
type ErrorHandler func(ctx context.Context, err error) error

// Interceptor provides unary and stream interceptors sharing one
// configuration.
type Interceptor struct {
	middleware       *jwtmiddleware.JWTMiddleware
	tokenExtractor   TokenExtractor
	exclusionChecker func(method string) bool
	errorHandler     ErrorHandler
	logger           jwt.Logger
	metrics          *metrics
}

// New creates an Interceptor checking tokens with middleware. The
// credentials-optional setting and the validate function of middleware
// apply; its HTTP extractor and error handler do not.
func New(middleware *jwtmiddleware.JWTMiddleware, opts ...Option) (*Interceptor, error) {
	if middleware == nil {
		return nil, errors.New("middleware cannot be nil")
	}

	cfg := &config{
		tokenExtractor: MetadataTokenExtractor(),
		errorHandler:   DefaultErrorHandler,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, err
	}

	return &Interceptor{
		middleware:       middleware,
		tokenExtractor:   cfg.tokenExtractor,
		exclusionChecker: cfg.exclusionChecker,
		errorHandler:     cfg.errorHandler,
		logger:           cfg.logger,
		metrics:          m,
	}, nil
}

// authenticate returns ctx carrying the verified token, or ctx unchanged for
// excluded methods and anonymous calls.
func (i *Interceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	if i.exclusionChecker != nil && i.exclusionChecker(method) {
		i.metrics.observe(method, resultExcluded)
		return ctx, nil
	}

	compact, err := i.tokenExtractor(ctx)
	if err != nil {
		i.metrics.observe(method, resultRejected)
		if i.logger != nil {
			i.logger.Warn("failed to extract token from metadata", "method", method, "error", err)
		}
		return nil, i.errorHandler(ctx, err)
	}

	token, err := i.middleware.CheckToken(ctx, compact)
	if err != nil {
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) || errors.Is(err, jwtmiddleware.ErrJWTInvalid) {
			i.metrics.observe(method, resultRejected)
		} else {
			i.metrics.observe(method, resultError)
		}
		if i.logger != nil {
			i.logger.Warn("JWT validation failed", "method", method, "error", err)
		}
		return nil, i.errorHandler(ctx, err)
	}

	if token == nil {
		i.metrics.observe(method, resultAnonymous)
		return ctx, nil
	}

	i.metrics.observe(method, resultAuthenticated)
	if i.logger != nil {
		i.logger.Debug("JWT validation successful", "method", method)
	}
	return jwtmiddleware.SetToken(ctx, token), nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that verifies
// the token before calling the handler.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		authCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// verifies the token once, when the stream opens.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		authCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: authCtx})
	}
}

// DefaultErrorHandler maps authentication failures to gRPC status codes:
// issuer and audience mismatches to PermissionDenied, other token failures
// to Unauthenticated, and anything else to Internal.
func DefaultErrorHandler(_ context.Context, err error) error {
	var validationErr *jwt.ValidationError
	switch {
	case errors.Is(err, jwtmiddleware.ErrJWTMissing):
		return status.Error(codes.Unauthenticated, "JWT is missing")
	case errors.Is(err, jwtmiddleware.ErrInvalidAuthHeader):
		return status.Errorf(codes.Unauthenticated, "invalid authorization metadata: %v", err)
	case !errors.Is(err, jwtmiddleware.ErrJWTInvalid):
		return status.Error(codes.Internal, "failed to verify JWT")
	case errors.As(err, &validationErr) &&
		(validationErr.Code == jwt.ErrorCodeInvalidIssuer || validationErr.Code == jwt.ErrorCodeInvalidAudience):
		return status.Errorf(codes.PermissionDenied, "JWT not accepted: %s", validationErr.Message)
	default:
		return status.Error(codes.Unauthenticated, "JWT is invalid")
	}
}

// wrappedServerStream overrides the context of a grpc.ServerStream.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
