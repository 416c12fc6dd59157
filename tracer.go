package jwt

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the default tracer.
const TracerName = "github.com/auth0/go-jwt"

// Span attribute keys set on "jwt.Verify".
const (
	AttributeAlgorithm = attribute.Key("jwt.alg")
	AttributeKeyID     = attribute.Key("jwt.kid")
	AttributeResult    = attribute.Key("jwt.result")
)

// Verification outcomes recorded under AttributeResult.
const (
	ResultValid            = "valid"
	ResultInvalidSignature = "invalid_signature"
	ResultClaimsInvalid    = "claims_invalid"
	ResultError            = "error"
)

// defaultTracer returns a tracer from the global provider, which is a no-op
// until the application installs one.
func defaultTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
