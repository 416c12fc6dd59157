package jwtgin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwt "github.com/auth0/go-jwt"
	jwtmiddleware "github.com/auth0/go-jwt/middleware"
	"github.com/auth0/go-jwt/signature"
)

var testSecret = []byte("a-string-secret-at-least-256-bits-long")

func init() {
	gin.SetMode(gin.TestMode)
}

func newMiddleware(t *testing.T, opts ...jwtmiddleware.Option) *jwtmiddleware.JWTMiddleware {
	t.Helper()

	hmac, err := signature.NewHMACVerifier(signature.Secret(testSecret))
	require.NoError(t, err)
	verifier, err := jwt.NewVerifier(jwt.WithAlgorithms(hmac, jwt.HS256))
	require.NoError(t, err)

	middleware, err := jwtmiddleware.New(append([]jwtmiddleware.Option{
		jwtmiddleware.WithVerifier(verifier),
		jwtmiddleware.WithRealm("gin-api"),
	}, opts...)...)
	require.NoError(t, err)
	return middleware
}

func mintToken(t *testing.T) string {
	t.Helper()

	signer, err := signature.NewHMACSigner(jwt.HS256, signature.Secret(testSecret))
	require.NoError(t, err)
	token, err := jwt.Build(signer, jwt.WithSubject("user-123"))
	require.NoError(t, err)
	return token.String()
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handler)
	router.GET("/api", func(c *gin.Context) {
		token, err := GetToken(c)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"sub": ""})
			return
		}
		fromRequest, err := jwtmiddleware.GetToken(c.Request.Context())
		if err != nil || fromRequest != token {
			c.Status(http.StatusInternalServerError)
			return
		}
		subject, _ := token.Claims().Subject()
		c.JSON(http.StatusOK, gin.H{"sub": subject})
	})
	return router
}

func TestNew(t *testing.T) {
	tests := []struct {
		name                string
		middlewareOptions   []jwtmiddleware.Option
		authorization       string
		wantStatus          int
		wantBody            string
		wantWWWAuthenticate string
	}{
		{
			name:          "valid token",
			authorization: "Bearer " + mintToken(t),
			wantStatus:    http.StatusOK,
			wantBody:      `{"sub":"user-123"}`,
		},
		{
			name:                "missing token",
			wantStatus:          http.StatusUnauthorized,
			wantWWWAuthenticate: `Bearer realm="gin-api"`,
		},
		{
			name:                "invalid token",
			authorization:       "Bearer " + mintToken(t) + "x",
			wantStatus:          http.StatusUnauthorized,
			wantWWWAuthenticate: `Bearer realm="gin-api", error="invalid_token", error_description="The access token is invalid"`,
		},
		{
			name:              "credentials optional",
			middlewareOptions: []jwtmiddleware.Option{jwtmiddleware.WithCredentialsOptional(true)},
			wantStatus:        http.StatusOK,
			wantBody:          `{"sub":""}`,
		},
		{
			name:              "excluded path",
			middlewareOptions: []jwtmiddleware.Option{jwtmiddleware.WithExclusionUrls([]string{"/api"})},
			authorization:     "Bearer not-a-token",
			wantStatus:        http.StatusOK,
			wantBody:          `{"sub":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(New(newMiddleware(t, tt.middlewareOptions...)))

			request := httptest.NewRequest(http.MethodGet, "/api", nil)
			if tt.authorization != "" {
				request.Header.Set("Authorization", tt.authorization)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, recorder.Body.String())
			}
			if tt.wantWWWAuthenticate != "" {
				assert.Equal(t, tt.wantWWWAuthenticate, recorder.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestNew_CustomErrorHandler(t *testing.T) {
	var gotErr error
	router := newRouter(New(newMiddleware(t), WithErrorHandler(func(c *gin.Context, err error) {
		gotErr = err
		c.JSON(http.StatusTeapot, gin.H{"message": "JWT is invalid."})
	})))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api", nil))

	assert.Equal(t, http.StatusTeapot, recorder.Code)
	assert.JSONEq(t, `{"message":"JWT is invalid."}`, recorder.Body.String())
	assert.ErrorIs(t, gotErr, jwtmiddleware.ErrJWTMissing)
}

func TestGetToken(t *testing.T) {
	token, err := jwt.Parse(mintToken(t))
	require.NoError(t, err)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err = GetToken(c)
	assert.ErrorIs(t, err, ErrMissingToken)

	c.Set(DefaultContextKey, "not a token")
	_, err = GetToken(c)
	assert.ErrorIs(t, err, ErrInvalidToken)

	c.Set("user", token)
	got, err := GetToken(c, "user")
	require.NoError(t, err)
	assert.Same(t, token, got)
}

func TestWithContextKey(t *testing.T) {
	router := gin.New()
	router.Use(New(newMiddleware(t), WithContextKey("user")))
	router.GET("/api", func(c *gin.Context) {
		_, defaultErr := GetToken(c)
		token, err := GetToken(c, "user")
		if err != nil || !errors.Is(defaultErr, ErrMissingToken) {
			c.Status(http.StatusInternalServerError)
			return
		}
		subject, _ := token.Claims().Subject()
		c.String(http.StatusOK, subject)
	})

	request := httptest.NewRequest(http.MethodGet, "/api", nil)
	request.Header.Set("Authorization", "Bearer "+mintToken(t))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "user-123", recorder.Body.String())
}
