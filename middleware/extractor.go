package jwtmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidAuthHeader is returned by extractors when an Authorization header
// is present but does not carry a token in an accepted scheme.
var ErrInvalidAuthHeader = errors.New("invalid authorization header")

// DefaultAuthScheme is the scheme accepted by AuthHeaderTokenExtractor and
// announced in challenges.
const DefaultAuthScheme = "Bearer"

// TokenExtractor is a function that takes a request as input and returns
// either a token or an error. An error should only be returned if an attempt
// to specify a token was found, but the information was somehow incorrectly
// formed. In the case where a token is simply not present, this should not
// be treated as an error. An empty string should be returned in that case.
type TokenExtractor func(r *http.Request) (string, error)

// AuthHeaderTokenExtractor is a TokenExtractor that takes a request
// and extracts the token from the Authorization header.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	return extractFromAuthHeader(r, []string{DefaultAuthScheme})
}

// SchemeTokenExtractor returns a TokenExtractor reading the Authorization
// header and accepting any of schemes, compared case-insensitively. Without
// schemes it accepts DefaultAuthScheme.
func SchemeTokenExtractor(schemes ...string) TokenExtractor {
	accepted := append([]string(nil), schemes...)
	if len(accepted) == 0 {
		accepted = []string{DefaultAuthScheme}
	}
	return func(r *http.Request) (string, error) {
		return extractFromAuthHeader(r, accepted)
	}
}

func extractFromAuthHeader(r *http.Request, schemes []string) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil // No error, just no JWT.
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 {
		return "", fmt.Errorf("%w: format must be %s {token}", ErrInvalidAuthHeader, schemes[0])
	}

	for _, scheme := range schemes {
		if strings.EqualFold(authHeaderParts[0], scheme) {
			return authHeaderParts[1], nil
		}
	}
	return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAuthHeader, authHeaderParts[0])
}

// CookieTokenExtractor builds a TokenExtractor that takes a request and
// extracts the token from the cookie using the passed in cookieName.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil // No cookie, then no JWT, so no error.
		}
		if err != nil {
			return "", err
		}

		return cookie.Value, nil
	}
}

// ParameterTokenExtractor returns a TokenExtractor that extracts
// the token from the specified query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor returns a TokenExtractor that runs multiple TokenExtractors
// and takes the one that does not return an empty token. If a TokenExtractor
// returns an error that error is immediately returned.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
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
