// Package jwtgin adapts jwtmiddleware to the Gin web framework.
//
//	middleware, err := jwtmiddleware.New(jwtmiddleware.WithVerifier(verifier))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router := gin.Default()
//	router.Use(jwtgin.New(middleware))
//	router.GET("/api/private", func(c *gin.Context) {
//	    token, _ := jwtgin.GetToken(c)
//	    subject, _ := token.Claims().Subject()
//	    c.JSON(http.StatusOK, gin.H{"sub": subject})
//	})
package jwtgin

import (
	"errors"

	"github.com/gin-gonic/gin"

	jwt "github.com/auth0/go-jwt"
	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

// DefaultContextKey is the gin context key the verified token is stored under.
const DefaultContextKey = "jwt"

var (
	ErrMissingToken = errors.New("no JWT found in gin context")
	ErrInvalidToken = errors.New("invalid JWT type in gin context")
)

type config struct {
	errorHandler func(*gin.Context, error)
	contextKey   string
}

// New returns a gin.HandlerFunc authenticating requests with middleware.
//
// The verified token is stored in the gin context under the context key and
// in the request context, so both GetToken and jwtmiddleware.GetToken find
// it. Failed requests are aborted; by default the error handler of
// middleware writes the response.
func New(middleware *jwtmiddleware.JWTMiddleware, opts ...Option) gin.HandlerFunc {
	cfg := &config{
		errorHandler: func(c *gin.Context, err error) {
			middleware.HandleError(c.Writer, c.Request, err)
		},
		contextKey: DefaultContextKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if middleware.Skip(c.Request) {
			c.Next()
			return
		}

		token, err := middleware.Authenticate(c.Request)
		if err != nil {
			cfg.errorHandler(c, err)
			c.Abort()
			return
		}

		if token != nil {
			c.Request = c.Request.WithContext(jwtmiddleware.SetToken(c.Request.Context(), token))
			c.Set(cfg.contextKey, token)
		}
		c.Next()
	}
}

// GetToken returns the token stored by New under key, or DefaultContextKey
// when key is empty.
func GetToken(c *gin.Context, key ...string) (*jwt.Token, error) {
	contextKey := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		contextKey = key[0]
	}

	value, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingToken
	}

	token, ok := value.(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrInvalidToken
	}
	return token, nil
}
