package jwtgrpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"

	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

// TokenExtractor extracts a token from the incoming context of a call. An
// empty token and nil error mean the call carries no token.
type TokenExtractor func(ctx context.Context) (string, error)

// MetadataTokenExtractor extracts the token from the "authorization" metadata
// field. The value must use one of schemes, "Bearer" when none are given.
func MetadataTokenExtractor(schemes ...string) TokenExtractor {
	if len(schemes) == 0 {
		schemes = []string{jwtmiddleware.DefaultAuthScheme}
	}

	return func(ctx context.Context) (string, error) {
		value := firstValue(ctx, "authorization")
		if value == "" {
			return "", nil
		}

		parts := strings.Fields(value)
		if len(parts) != 2 {
			return "", fmt.Errorf("%w: format must be %s {token}", jwtmiddleware.ErrInvalidAuthHeader, schemes[0])
		}
		for _, scheme := range schemes {
			if strings.EqualFold(parts[0], scheme) {
				return parts[1], nil
			}
		}
		return "", fmt.Errorf("%w: unsupported scheme %q", jwtmiddleware.ErrInvalidAuthHeader, parts[0])
	}
}

// MetadataFieldTokenExtractor extracts the raw token from a metadata field.
func MetadataFieldTokenExtractor(field string) TokenExtractor {
	return func(ctx context.Context) (string, error) {
		return firstValue(ctx, field), nil
	}
}

// MultiTokenExtractor returns the first token found by extractors. It stops
// at the first error.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(ctx context.Context) (string, error) {
		for _, ex := range extractors {
			token, err := ex(ctx)
			if err != nil {
				return "", err
			}
			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}

func firstValue(ctx context.Context, field string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(field)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
