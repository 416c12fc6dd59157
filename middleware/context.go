package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jwt "github.com/auth0/go-jwt"
)

// ErrTokenNotFound is returned when the context carries no verified token.
var ErrTokenNotFound = errors.New("token not found in context")

type tokenContextKey struct{}

// SetToken returns a copy of ctx carrying token.
func SetToken(ctx context.Context, token *jwt.Token) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// GetToken returns the token verified by the middleware.
//
// Example:
//
//	token, err := jwtmiddleware.GetToken(r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get token", http.StatusInternalServerError)
//	    return
//	}
//	subject, _ := token.Claims().Subject()
func GetToken(ctx context.Context) (*jwt.Token, error) {
	token, ok := ctx.Value(tokenContextKey{}).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

// MustGetToken returns the verified token or panics.
// Use only when you are certain the middleware has run.
func MustGetToken(ctx context.Context) *jwt.Token {
	token, err := GetToken(ctx)
	if err != nil {
		panic(err)
	}
	return token
}

// HasToken reports whether ctx carries a verified token.
func HasToken(ctx context.Context) bool {
	_, err := GetToken(ctx)
	return err == nil
}

// GetClaims decodes the claims of the verified token into T.
//
// Example:
//
//	type CustomClaims struct {
//	    Subject string `json:"sub"`
//	    Scope   string `json:"scope"`
//	}
//
//	claims, err := jwtmiddleware.GetClaims[CustomClaims](r.Context())
func GetClaims[T any](ctx context.Context) (T, error) {
	var out T

	token, err := GetToken(ctx)
	if err != nil {
		return out, err
	}

	data, err := json.Marshal(token.Claims())
	if err != nil {
		return out, fmt.Errorf("failed to encode claims: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode claims into %T: %w", out, err)
	}
	return out, nil
}
