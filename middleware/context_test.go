package jwtmiddleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwt "github.com/auth0/go-jwt"
)

func TestTokenContext(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		ctx := context.Background()

		_, err := GetToken(ctx)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.False(t, HasToken(ctx))
		assert.PanicsWithError(t, ErrTokenNotFound.Error(), func() {
			MustGetToken(ctx)
		})
	})

	t.Run("nil token", func(t *testing.T) {
		ctx := SetToken(context.Background(), nil)
		assert.False(t, HasToken(ctx))
	})

	t.Run("stored token", func(t *testing.T) {
		token, err := jwt.Parse(mintToken(t, jwt.HS256, testSecret))
		require.NoError(t, err)

		ctx := SetToken(context.Background(), token)
		assert.True(t, HasToken(ctx))

		got, err := GetToken(ctx)
		require.NoError(t, err)
		assert.Same(t, token, got)
		assert.Same(t, token, MustGetToken(ctx))
	})
}

func TestGetClaims(t *testing.T) {
	type customClaims struct {
		Issuer   string `json:"iss"`
		Subject  string `json:"sub"`
		Audience string `json:"aud"`
		Scope    string `json:"scope"`
	}

	token, err := jwt.Parse(mintToken(t, jwt.HS256, testSecret, jwt.WithClaim("scope", "read:messages")))
	require.NoError(t, err)
	ctx := SetToken(context.Background(), token)

	t.Run("decodes into a struct", func(t *testing.T) {
		claims, err := GetClaims[customClaims](ctx)
		require.NoError(t, err)
		assert.Equal(t, customClaims{
			Issuer:   testIssuer,
			Subject:  "user-123",
			Audience: testAudience,
			Scope:    "read:messages",
		}, claims)
	})

	t.Run("decodes into a map", func(t *testing.T) {
		claims, err := GetClaims[map[string]any](ctx)
		require.NoError(t, err)
		assert.Equal(t, "read:messages", claims["scope"])
	})

	t.Run("reports a type mismatch", func(t *testing.T) {
		_, err := GetClaims[struct {
			Subject int `json:"sub"`
		}](ctx)
		assert.ErrorContains(t, err, "failed to decode claims")
	})

	t.Run("reports a missing token", func(t *testing.T) {
		_, err := GetClaims[customClaims](context.Background())
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}
