package jwt

import "context"

// Signer produces signatures for a single algorithm.
type Signer interface {
	// Algorithm is written to the "alg" header of every token the signer signs.
	Algorithm() Algorithm

	// Sign returns the signature over signingInput.
	Sign(signingInput []byte) ([]byte, error)
}

// SignatureVerifier checks the signature of a decoded token.
//
// Verify returns false with a nil error when the signature does not match.
// Errors are reserved for conditions that prevent the check from running,
// such as a missing key or an algorithm the verifier does not implement.
type SignatureVerifier interface {
	Verify(ctx context.Context, token *Token) (bool, error)
}

// SignatureVerifierFunc adapts a function to SignatureVerifier.
type SignatureVerifierFunc func(ctx context.Context, token *Token) (bool, error)

// Verify calls f(ctx, token).
func (f SignatureVerifierFunc) Verify(ctx context.Context, token *Token) (bool, error) {
	return f(ctx, token)
}
