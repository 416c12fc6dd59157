package jwtgrpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

func TestMetadataTokenExtractor(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		schemes   []string
		wantToken string
		wantErr   string
	}{
		{
			name: "no metadata",
			ctx:  context.Background(),
		},
		{
			name: "no authorization",
			ctx:  metadata.NewIncomingContext(context.Background(), metadata.Pairs("other", "value")),
		},
		{
			name:      "bearer token",
			ctx:       incomingContext("Bearer abc"),
			wantToken: "abc",
		},
		{
			name:      "case insensitive scheme",
			ctx:       incomingContext("bearer abc"),
			wantToken: "abc",
		},
		{
			name:      "custom scheme",
			ctx:       incomingContext("JWT abc"),
			schemes:   []string{"JWT"},
			wantToken: "abc",
		},
		{
			name:    "missing scheme",
			ctx:     incomingContext("abc"),
			wantErr: "invalid authorization header: format must be Bearer {token}",
		},
		{
			name:    "unsupported scheme",
			ctx:     incomingContext("Basic abc"),
			wantErr: `invalid authorization header: unsupported scheme "Basic"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := MetadataTokenExtractor(tt.schemes...)(tt.ctx)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.ErrorIs(t, err, jwtmiddleware.ErrInvalidAuthHeader)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestMetadataFieldTokenExtractor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-token", "abc"))

	token, err := MetadataFieldTokenExtractor("x-token")(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = MetadataFieldTokenExtractor("x-other")(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMultiTokenExtractor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-token", "abc"))

	token, err := MultiTokenExtractor(MetadataTokenExtractor(), MetadataFieldTokenExtractor("x-token"))(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	failing := func(context.Context) (string, error) { return "", errors.New("extraction fail") }
	_, err = MultiTokenExtractor(failing, MetadataFieldTokenExtractor("x-token"))(ctx)
	assert.EqualError(t, err, "extraction fail")
}
