package jwt

import "errors"

// Sentinel errors returned by parsing and verification.
var (
	// ErrMalformedToken is returned when a compact token cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnsupportedAlgorithm is returned when no verifier is configured for
	// the token's algorithm, or when a verifier is handed a token of a family
	// it does not implement.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrNoAlgorithmConfigured is returned when a token is signed without a signer.
	ErrNoAlgorithmConfigured = errors.New("no algorithm configured")

	// ErrNoMatchingKey is returned when a key set holds no key with the token's kid.
	ErrNoMatchingKey = errors.New("no matching key")

	// ErrAmbiguousKey is returned when a token carries no kid and the key set
	// does not hold exactly one key.
	ErrAmbiguousKey = errors.New("ambiguous key")

	// ErrClaimsInvalid is matched by every *ValidationError.
	ErrClaimsInvalid = errors.New("claims invalid")
)

// ValidationError describes a claim rule the token failed.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_expired", "invalid_audience")
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains the underlying error, if any
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrClaimsInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrClaimsInvalid
}

// Claim validation error codes
const (
	ErrorCodeInvalidAudience  = "invalid_audience"
	ErrorCodeInvalidIssuer    = "invalid_issuer"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenNotYetValid = "token_not_yet_valid"
)

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
