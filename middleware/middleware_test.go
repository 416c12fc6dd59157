package jwtmiddleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	jwt "github.com/auth0/go-jwt"
	"github.com/auth0/go-jwt/signature"
)

const (
	testIssuer   = "https://issuer.example.com/"
	testAudience = "my-api"
)

var testSecret = []byte("a-string-secret-at-least-256-bits-long")

func testVerifier(t *testing.T) *jwt.Verifier {
	t.Helper()

	hmac, err := signature.NewHMACVerifier(signature.Secret(testSecret))
	require.NoError(t, err)

	verifier, err := jwt.NewVerifier(
		jwt.WithAlgorithms(hmac, jwt.HS256),
		jwt.WithIssuers(testIssuer),
		jwt.WithAudiences(testAudience),
		jwt.WithExpiryCheck(),
	)
	require.NoError(t, err)
	return verifier
}

func mintToken(t *testing.T, alg jwt.Algorithm, secret []byte, opts ...jwt.Option) string {
	t.Helper()

	signer, err := signature.NewHMACSigner(alg, signature.Secret(secret))
	require.NoError(t, err)

	base := []jwt.Option{
		jwt.WithIssuer(testIssuer),
		jwt.WithAudience(testAudience),
		jwt.WithSubject("user-123"),
		jwt.WithExpiresIn(time.Hour),
	}
	token, err := jwt.Build(signer, append(base, opts...)...)
	require.NoError(t, err)
	return token.String()
}

type verifierFunc func(ctx context.Context, compact string) (*jwt.Token, bool, error)

func (f verifierFunc) VerifyCompact(ctx context.Context, compact string) (*jwt.Token, bool, error) {
	return f(ctx, compact)
}

var subjectHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token, err := GetToken(r.Context())
	if err != nil {
		_, _ = w.Write([]byte(`{"sub":""}`))
		return
	}
	subject, _ := token.Claims().Subject()
	_, _ = w.Write([]byte(`{"sub":"` + subject + `"}`))
})

func Test_CheckJWT(t *testing.T) {
	validToken := mintToken(t, jwt.HS256, testSecret)

	testCases := []struct {
		name                string
		options             []Option
		method              string
		path                string
		authorization       string
		wantStatusCode      int
		wantBody            string
		wantErrorCode       string
		wantWWWAuthenticate string
	}{
		{
			name:           "it can successfully validate a token",
			authorization:  "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":"user-123"}`,
		},
		{
			name:           "it can validate on options",
			method:         http.MethodOptions,
			authorization:  "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":"user-123"}`,
		},
		{
			name:                "it fails if the token is missing and credentials are not optional",
			wantStatusCode:      http.StatusUnauthorized,
			wantWWWAuthenticate: `Bearer realm="my-api"`,
		},
		{
			name:                "it rejects a malformed Authorization header",
			authorization:       "bad",
			wantStatusCode:      http.StatusBadRequest,
			wantErrorCode:       ErrorCodeInvalidAuthHeader,
			wantWWWAuthenticate: `Bearer realm="my-api", error="invalid_request", error_description="The Authorization header is malformed"`,
		},
		{
			name:           "it rejects a malformed token",
			authorization:  "Bearer not-a-token",
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  ErrorCodeTokenMalformed,
		},
		{
			name:                "it rejects a token signed with another secret",
			authorization:       "Bearer " + mintToken(t, jwt.HS256, []byte("another-secret-at-least-256-bits-long!")),
			wantStatusCode:      http.StatusUnauthorized,
			wantWWWAuthenticate: `Bearer realm="my-api", error="invalid_token", error_description="The access token is invalid"`,
		},
		{
			name:                "it rejects an expired token",
			authorization:       "Bearer " + mintToken(t, jwt.HS256, testSecret, jwt.WithExpiresAt(time.Now().Add(-time.Hour))),
			wantStatusCode:      http.StatusUnauthorized,
			wantErrorCode:       jwt.ErrorCodeTokenExpired,
			wantWWWAuthenticate: `Bearer realm="my-api", error="invalid_token", error_description="The access token expired"`,
		},
		{
			name:                "it rejects a token for another audience",
			authorization:       "Bearer " + mintToken(t, jwt.HS256, testSecret, jwt.WithAudience("other-api")),
			wantStatusCode:      http.StatusForbidden,
			wantErrorCode:       jwt.ErrorCodeInvalidAudience,
			wantWWWAuthenticate: `Bearer realm="my-api", error="insufficient_scope", error_description="The access token audience does not match"`,
		},
		{
			name:                "it rejects a token from another issuer",
			authorization:       "Bearer " + mintToken(t, jwt.HS256, testSecret, jwt.WithIssuer("https://other.example.com/")),
			wantStatusCode:      http.StatusForbidden,
			wantErrorCode:       jwt.ErrorCodeInvalidIssuer,
			wantWWWAuthenticate: `Bearer realm="my-api", error="insufficient_scope", error_description="The access token was issued by an untrusted issuer"`,
		},
		{
			name:           "it rejects an untrusted algorithm",
			authorization:  "Bearer " + mintToken(t, jwt.HS384, testSecret),
			wantStatusCode: http.StatusUnauthorized,
			wantErrorCode:  ErrorCodeInvalidAlgorithm,
		},
		{
			name:           "it continues without a token when credentials are optional",
			options:        []Option{WithCredentialsOptional(true)},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":""}`,
		},
		{
			name:           "it still rejects a bad token when credentials are optional",
			options:        []Option{WithCredentialsOptional(true)},
			authorization:  "Bearer not-a-token",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "it skips validation on OPTIONS if validateOnOptions is set to false",
			options:        []Option{WithValidateOnOptions(false)},
			method:         http.MethodOptions,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":""}`,
		},
		{
			name:           "it skips excluded paths",
			options:        []Option{WithExclusionUrls([]string{"/health"})},
			path:           "/health",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":""}`,
		},
		{
			name:           "it still checks paths that are not excluded",
			options:        []Option{WithExclusionUrls([]string{"/health"})},
			path:           "/api",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "it rejects a token failing application checks",
			options: []Option{WithValidate(func(ctx context.Context, token *jwt.Token) error {
				return jwt.NewValidationError(jwt.ErrorCodeInvalidIssuer, "tenant not allowed", nil)
			})},
			authorization:  "Bearer " + validToken,
			wantStatusCode: http.StatusForbidden,
			wantErrorCode:  jwt.ErrorCodeInvalidIssuer,
		},
		{
			name:           "it accepts an additional scheme",
			options:        []Option{WithAuthSchemes("JWT", "Bearer")},
			authorization:  "JWT " + validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"sub":"user-123"}`,
		},
		{
			name:                "it challenges with the custom scheme",
			options:             []Option{WithAuthSchemes("JWT")},
			wantStatusCode:      http.StatusUnauthorized,
			wantWWWAuthenticate: `JWT realm="my-api"`,
		},
		{
			name: "it uses the custom error handler",
			options: []Option{WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte(err.Error()))
			})},
			wantStatusCode: http.StatusTeapot,
			wantBody:       "jwt missing",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{
				WithVerifier(testVerifier(t)),
				WithRealm(testAudience),
			}, testCase.options...)

			middleware, err := New(opts...)
			require.NoError(t, err)

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}
			path := testCase.path
			if path == "" {
				path = "/"
			}

			request := httptest.NewRequest(method, path, nil)
			if testCase.authorization != "" {
				request.Header.Set("Authorization", testCase.authorization)
			}
			recorder := httptest.NewRecorder()

			middleware.CheckJWT(subjectHandler).ServeHTTP(recorder, request)

			response := recorder.Result()
			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			if testCase.wantBody != "" {
				assert.Equal(t, testCase.wantBody, string(body))
			}
			if testCase.wantErrorCode != "" {
				assert.Contains(t, string(body), `"error_code":"`+testCase.wantErrorCode+`"`)
			}
			if testCase.wantWWWAuthenticate != "" {
				assert.Equal(t, testCase.wantWWWAuthenticate, response.Header.Get("WWW-Authenticate"))
			}
		})
	}
}

func Test_CheckJWT_VerifierFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	middleware, err := New(
		WithVerifier(verifierFunc(func(context.Context, string) (*jwt.Token, bool, error) {
			return nil, false, errors.New("key service unavailable")
		})),
		WithLogger(jwt.NewZapLogger(zap.New(core).Sugar())),
	)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer a.b.c")
	recorder := httptest.NewRecorder()

	middleware.CheckJWT(subjectHandler).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Empty(t, recorder.Header().Get("WWW-Authenticate"))
	assert.Equal(t, 1, logs.FilterMessage("JWT validation failed").Len())
}

func Test_CheckToken(t *testing.T) {
	middleware, err := New(WithVerifier(testVerifier(t)))
	require.NoError(t, err)

	t.Run("it returns the verified token", func(t *testing.T) {
		token, err := middleware.CheckToken(context.Background(), mintToken(t, jwt.HS256, testSecret))
		require.NoError(t, err)
		subject, _ := token.Claims().Subject()
		assert.Equal(t, "user-123", subject)
	})

	t.Run("it keeps the cause of a rejection", func(t *testing.T) {
		_, err := middleware.CheckToken(context.Background(), "a.b")
		require.ErrorIs(t, err, ErrJWTInvalid)
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("it reports a missing token", func(t *testing.T) {
		_, err := middleware.CheckToken(context.Background(), "")
		require.ErrorIs(t, err, ErrJWTMissing)
	})

	t.Run("it keeps the broken claim rule", func(t *testing.T) {
		_, err := middleware.CheckToken(context.Background(), mintToken(t, jwt.HS256, testSecret, jwt.WithAudience("other-api")))
		require.ErrorIs(t, err, ErrJWTInvalid)

		var validationErr *jwt.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, jwt.ErrorCodeInvalidAudience, validationErr.Code)
	})

	t.Run("a bad signature stays a generic rejection", func(t *testing.T) {
		_, err := middleware.CheckToken(context.Background(), mintToken(t, jwt.HS256, []byte("another-secret-at-least-256-bits-long!")))
		require.ErrorIs(t, err, ErrJWTInvalid)
		require.ErrorIs(t, err, errTokenRejected)
		assert.NotErrorIs(t, err, jwt.ErrClaimsInvalid)
	})

	t.Run("verifiers without claim details give a generic rejection", func(t *testing.T) {
		token, err := jwt.Parse(mintToken(t, jwt.HS256, testSecret))
		require.NoError(t, err)
		m, err := New(WithVerifier(verifierFunc(func(context.Context, string) (*jwt.Token, bool, error) {
			return token, false, nil
		})))
		require.NoError(t, err)

		_, err = m.CheckToken(context.Background(), "a.b.c")
		require.ErrorIs(t, err, errTokenRejected)
	})

	t.Run("key selection failures are rejections", func(t *testing.T) {
		for _, cause := range []error{jwt.ErrNoMatchingKey, jwt.ErrAmbiguousKey} {
			m, err := New(WithVerifier(verifierFunc(func(context.Context, string) (*jwt.Token, bool, error) {
				return nil, false, cause
			})))
			require.NoError(t, err)

			_, err = m.CheckToken(context.Background(), "a.b.c")
			require.ErrorIs(t, err, ErrJWTInvalid)
			require.ErrorIs(t, err, cause)
		}
	})
}

func Test_Challenge(t *testing.T) {
	middleware, err := New(WithVerifier(testVerifier(t)))
	require.NoError(t, err)
	assert.Equal(t, "Bearer", middleware.Challenge())

	middleware, err = New(WithVerifier(testVerifier(t)), WithRealm("api"), WithAuthSchemes("JWT"))
	require.NoError(t, err)
	assert.Equal(t, `JWT realm="api"`, middleware.Challenge())
}
