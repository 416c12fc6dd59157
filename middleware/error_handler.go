package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwt "github.com/auth0/go-jwt"
)

var (
	// ErrJWTMissing is returned when the JWT is missing.
	ErrJWTMissing = errors.New("jwt missing")

	// ErrJWTInvalid is returned when the JWT is invalid.
	ErrJWTInvalid = errors.New("jwt invalid")

	// errTokenRejected is the detail of a token the verifier rejected
	// without naming a broken claim rule.
	errTokenRejected = errors.New("token signature or claims rejected")
)

// Error codes carried in ErrorResponse.ErrorCode.
const (
	ErrorCodeTokenMalformed    = "token_malformed"
	ErrorCodeInvalidAlgorithm  = "invalid_algorithm"
	ErrorCodeKeyNotFound       = "key_not_found"
	ErrorCodeInvalidAuthHeader = "invalid_authorization_header"
)

// ErrorHandler is a handler which is called when an error occurs in the
// JWTMiddleware. Among some general errors, this handler also determines the
// response of the JWTMiddleware when a token is not found or is invalid. The
// err can be checked to be ErrJWTMissing or ErrJWTInvalid for specific cases.
// If you implement your own ErrorHandler you MUST take into consideration the
// error types as not properly responding to them or having a poorly
// implemented handler could result in the JWTMiddleware not functioning as
// intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written by DefaultErrorHandler.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
}

// DefaultErrorHandler is the default error handler implementation for the
// JWTMiddleware. It answers with an RFC 6750 bearer challenge:
//
//   - missing token: 401 with a bare challenge
//   - malformed token or Authorization header: 400 invalid_request
//   - issuer or audience mismatch: 403 insufficient_scope
//   - any other rejected token: 401 invalid_token
//   - anything else: 500 server_error, without a challenge
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := describeError(err)

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusInternalServerError {
		c := challengeFromContext(r.Context())
		if errors.Is(err, ErrJWTMissing) {
			w.Header().Set("WWW-Authenticate", c.header("", ""))
		} else {
			w.Header().Set("WWW-Authenticate", c.header(resp.Error, resp.ErrorDescription))
		}
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func describeError(err error) (int, ErrorResponse) {
	var validationErr *jwt.ValidationError

	switch {
	case errors.Is(err, ErrJWTMissing):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"}
	case errors.Is(err, ErrInvalidAuthHeader):
		return http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "The Authorization header is malformed",
			ErrorCode:        ErrorCodeInvalidAuthHeader,
		}
	case !errors.Is(err, ErrJWTInvalid):
		return http.StatusInternalServerError, ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "An internal error occurred while processing the request",
		}
	case errors.Is(err, jwt.ErrMalformedToken):
		return http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "The access token is malformed",
			ErrorCode:        ErrorCodeTokenMalformed,
		}
	case errors.As(err, &validationErr):
		return describeValidationError(validationErr)
	case errors.Is(err, jwt.ErrUnsupportedAlgorithm):
		return http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_token",
			ErrorDescription: "The access token uses an unsupported algorithm",
			ErrorCode:        ErrorCodeInvalidAlgorithm,
		}
	case errors.Is(err, jwt.ErrNoMatchingKey), errors.Is(err, jwt.ErrAmbiguousKey):
		return http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_token",
			ErrorDescription: "Unable to verify the access token",
			ErrorCode:        ErrorCodeKeyNotFound,
		}
	default:
		return http.StatusUnauthorized, ErrorResponse{
			Error:            "invalid_token",
			ErrorDescription: "The access token is invalid",
		}
	}
}

func describeValidationError(err *jwt.ValidationError) (int, ErrorResponse) {
	resp := ErrorResponse{Error: "invalid_token", ErrorCode: err.Code}
	status := http.StatusUnauthorized

	switch err.Code {
	case jwt.ErrorCodeTokenExpired:
		resp.ErrorDescription = "The access token expired"
	case jwt.ErrorCodeTokenNotYetValid:
		resp.ErrorDescription = "The access token is not yet valid"
	case jwt.ErrorCodeInvalidIssuer:
		status = http.StatusForbidden
		resp.Error = "insufficient_scope"
		resp.ErrorDescription = "The access token was issued by an untrusted issuer"
	case jwt.ErrorCodeInvalidAudience:
		status = http.StatusForbidden
		resp.Error = "insufficient_scope"
		resp.ErrorDescription = "The access token audience does not match"
	default:
		resp.ErrorDescription = "The access token is invalid"
	}

	return status, resp
}

// challenge holds the WWW-Authenticate parameters of a middleware.
type challenge struct {
	scheme string
	realm  string
}

type challengeContextKey struct{}

func withChallenge(ctx context.Context, c challenge) context.Context {
	return context.WithValue(ctx, challengeContextKey{}, c)
}

func challengeFromContext(ctx context.Context) challenge {
	if c, ok := ctx.Value(challengeContextKey{}).(challenge); ok {
		return c
	}
	return challenge{scheme: DefaultAuthScheme}
}

func (c challenge) header(code, description string) string {
	var params []string
	if c.realm != "" {
		params = append(params, fmt.Sprintf("realm=%q", c.realm))
	}
	if code != "" {
		params = append(params, fmt.Sprintf("error=%q", code))
	}
	if description != "" {
		params = append(params, fmt.Sprintf("error_description=%q", description))
	}

	if len(params) == 0 {
		return c.scheme
	}
	return c.scheme + " " + strings.Join(params, ", ")
}

// invalidError handles wrapping a JWT validation error with
// the concrete error ErrJWTInvalid. We do not expose this
// publicly because the interface methods of Is and Unwrap
// should give the user all they need.
type invalidError struct {
	details error
}

// Is allows the error to support equality to ErrJWTInvalid.
func (e *invalidError) Is(target error) bool {
	return target == ErrJWTInvalid
}

// Error returns a string representation of the error.
func (e *invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrJWTInvalid, e.details)
}

// Unwrap allows the error to support equality to the
// underlying error and not just ErrJWTInvalid.
func (e *invalidError) Unwrap() error {
	return e.details
}
