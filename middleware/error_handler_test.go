package jwtmiddleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwt "github.com/auth0/go-jwt"
)

func TestDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name                 string
		err                  error
		wantStatus           int
		wantError            string
		wantErrorDescription string
		wantErrorCode        string
		wantWWWAuthenticate  string
	}{
		{
			name:                "ErrJWTMissing",
			err:                 ErrJWTMissing,
			wantStatus:          http.StatusUnauthorized,
			wantError:           "invalid_token",
			wantWWWAuthenticate: `Bearer`,
		},
		{
			name:                 "ErrJWTInvalid",
			err:                  ErrJWTInvalid,
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "The access token is invalid",
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="The access token is invalid"`,
		},
		{
			name:                 "malformed Authorization header",
			err:                  fmt.Errorf("error extracting token: %w", ErrInvalidAuthHeader),
			wantStatus:           http.StatusBadRequest,
			wantError:            "invalid_request",
			wantErrorDescription: "The Authorization header is malformed",
			wantErrorCode:        ErrorCodeInvalidAuthHeader,
			wantWWWAuthenticate:  `Bearer error="invalid_request", error_description="The Authorization header is malformed"`,
		},
		{
			name:                 "token malformed",
			err:                  &invalidError{details: jwt.ErrMalformedToken},
			wantStatus:           http.StatusBadRequest,
			wantError:            "invalid_request",
			wantErrorDescription: "The access token is malformed",
			wantErrorCode:        ErrorCodeTokenMalformed,
			wantWWWAuthenticate:  `Bearer error="invalid_request", error_description="The access token is malformed"`,
		},
		{
			name:                 "token expired",
			err:                  &invalidError{details: jwt.NewValidationError(jwt.ErrorCodeTokenExpired, "token expired", nil)},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "The access token expired",
			wantErrorCode:        jwt.ErrorCodeTokenExpired,
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="The access token expired"`,
		},
		{
			name:                 "token not yet valid",
			err:                  &invalidError{details: jwt.NewValidationError(jwt.ErrorCodeTokenNotYetValid, "token not yet valid", nil)},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "The access token is not yet valid",
			wantErrorCode:        jwt.ErrorCodeTokenNotYetValid,
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="The access token is not yet valid"`,
		},
		{
			name:                 "invalid issuer",
			err:                  &invalidError{details: jwt.NewValidationError(jwt.ErrorCodeInvalidIssuer, "invalid issuer", nil)},
			wantStatus:           http.StatusForbidden,
			wantError:            "insufficient_scope",
			wantErrorDescription: "The access token was issued by an untrusted issuer",
			wantErrorCode:        jwt.ErrorCodeInvalidIssuer,
			wantWWWAuthenticate:  `Bearer error="insufficient_scope", error_description="The access token was issued by an untrusted issuer"`,
		},
		{
			name:                 "invalid audience",
			err:                  &invalidError{details: jwt.NewValidationError(jwt.ErrorCodeInvalidAudience, "invalid audience", nil)},
			wantStatus:           http.StatusForbidden,
			wantError:            "insufficient_scope",
			wantErrorDescription: "The access token audience does not match",
			wantErrorCode:        jwt.ErrorCodeInvalidAudience,
			wantWWWAuthenticate:  `Bearer error="insufficient_scope", error_description="The access token audience does not match"`,
		},
		{
			name:                 "unknown validation error",
			err:                  &invalidError{details: jwt.NewValidationError("unknown_code", "unknown error", nil)},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "The access token is invalid",
			wantErrorCode:        "unknown_code",
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="The access token is invalid"`,
		},
		{
			name:                 "invalid algorithm",
			err:                  &invalidError{details: fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, "none")},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "The access token uses an unsupported algorithm",
			wantErrorCode:        ErrorCodeInvalidAlgorithm,
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="The access token uses an unsupported algorithm"`,
		},
		{
			name:                 "no matching key",
			err:                  &invalidError{details: jwt.ErrNoMatchingKey},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "Unable to verify the access token",
			wantErrorCode:        ErrorCodeKeyNotFound,
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="Unable to verify the access token"`,
		},
		{
			name:                 "ambiguous key",
			err:                  &invalidError{details: jwt.ErrAmbiguousKey},
			wantStatus:           http.StatusUnauthorized,
			wantError:            "invalid_token",
			wantErrorDescription: "Unable to verify the access token",
			wantErrorCode:        ErrorCodeKeyNotFound,
			wantWWWAuthenticate:  `Bearer error="invalid_token", error_description="Unable to verify the access token"`,
		},
		{
			name:                 "generic error",
			err:                  assert.AnError,
			wantStatus:           http.StatusInternalServerError,
			wantError:            "server_error",
			wantErrorDescription: "An internal error occurred while processing the request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			DefaultErrorHandler(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.wantWWWAuthenticate != "" {
				assert.Equal(t, tt.wantWWWAuthenticate, w.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, w.Header().Get("WWW-Authenticate"))
			}

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantErrorDescription, resp.ErrorDescription)
			assert.Equal(t, tt.wantErrorCode, resp.ErrorCode)
		})
	}
}

func TestDefaultErrorHandler_Challenge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r = r.WithContext(withChallenge(r.Context(), challenge{scheme: "JWT", realm: "my-api"}))

	DefaultErrorHandler(w, r, &invalidError{details: errTokenRejected})

	assert.Equal(t, `JWT realm="my-api", error="invalid_token", error_description="The access token is invalid"`, w.Header().Get("WWW-Authenticate"))
}

func TestInvalidError(t *testing.T) {
	cause := jwt.NewValidationError(jwt.ErrorCodeTokenExpired, "token expired", nil)
	err := &invalidError{details: cause}

	assert.ErrorIs(t, err, ErrJWTInvalid)
	assert.ErrorIs(t, err, jwt.ErrClaimsInvalid)
	assert.Equal(t, "jwt invalid: "+cause.Error(), err.Error())

	var validationErr *jwt.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, jwt.ErrorCodeTokenExpired, validationErr.Code)
}
