// Package jwtecho adapts jwtmiddleware to the Echo web framework.
package jwtecho

import (
	"github.com/labstack/echo/v4"

	jwt "github.com/auth0/go-jwt"
	jwtmiddleware "github.com/auth0/go-jwt/middleware"
)

// DefaultContextKey is the echo context key the verified token is stored under.
const DefaultContextKey = "jwt"

type config struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
}

// New returns an echo.MiddlewareFunc authenticating requests with
// middleware. The verified token is stored in the echo context and in the
// request context.
func New(middleware *jwtmiddleware.JWTMiddleware, opts ...Option) echo.MiddlewareFunc {
	cfg := &config{
		errorHandler: func(c echo.Context, err error) error {
			middleware.HandleError(c.Response(), c.Request(), err)
			return nil
		},
		contextKey: DefaultContextKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if middleware.Skip(c.Request()) {
				return next(c)
			}

			token, err := middleware.Authenticate(c.Request())
			if err != nil {
				return cfg.errorHandler(c, err)
			}

			if token != nil {
				c.SetRequest(c.Request().WithContext(jwtmiddleware.SetToken(c.Request().Context(), token)))
				c.Set(cfg.contextKey, token)
			}
			return next(c)
		}
	}
}

// GetToken returns the token stored under contextKey, or DefaultContextKey
// when contextKey is empty.
func GetToken(c echo.Context, contextKey string) (*jwt.Token, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	token, ok := c.Get(contextKey).(*jwt.Token)
	return token, ok && token != nil
}
