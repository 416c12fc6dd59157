/*
Package jwt issues, parses and verifies JSON Web Tokens in the JWS compact
serialization (RFC 7519, RFC 7515).

The package owns the token model and its orchestration. Cryptography lives in
the signature package, which adapts HMAC, RSA PKCS#1 v1.5, RSA-PSS and ECDSA
keys to the Signer and SignatureVerifier interfaces defined here. Keys
published by an identity provider are resolved by the jwks package.

# Issuing Tokens

	signer, err := signature.NewHMACSigner(jwt.HS256, signature.Secret(secret))
	if err != nil {
	    log.Fatal(err)
	}

	token, err := jwt.Build(signer,
	    jwt.WithIssuer("https://issuer.example.com/"),
	    jwt.WithSubject("user-123"),
	    jwt.WithAudience("my-api"),
	    jwt.WithExpiresIn(jwt.DefaultExpiry),
	    jwt.WithClaim("scope", "read:messages"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	compact := token.String()

# Verifying Tokens

A Verifier trusts only the algorithms it is configured with. Claim rules that
are not configured are not checked.

	hmac, err := signature.NewHMACVerifier(signature.Secret(secret))
	if err != nil {
	    log.Fatal(err)
	}

	verifier, err := jwt.NewVerifier(
	    jwt.WithAlgorithms(hmac, jwt.HS256, jwt.HS384),
	    jwt.WithIssuers("https://issuer.example.com/"),
	    jwt.WithAudiences("my-api"),
	    jwt.WithExpiryCheck(),
	    jwt.WithNotBeforeCheck(),
	    jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	token, valid, err := verifier.VerifyCompact(ctx, compact)

Verification distinguishes two kinds of negative outcome. A token that breaks
a claim rule or whose signature does not match yields false with a nil error.
Conditions that prevent a decision are errors: ErrMalformedToken for input
that is not a compact token, ErrUnsupportedAlgorithm for an untrusted "alg",
and ErrNoMatchingKey or ErrAmbiguousKey when a key set cannot supply a key.

# Claims

Claims keeps members in order and holds each value as JSON text, so any
member survives a round trip through Parse unchanged. Registered claims have
typed accessors; everything else is reachable through Get, Raw and Decode.
The "aud" claim is accepted both as a string and as an array.

# Logging and Tracing

WithLogger accepts any Logger, including *slog.Logger. Adapters exist for
logrus, zap and zerolog. Each verification records a "jwt.Verify" span on the
tracer set with WithTracer, or on the global OpenTelemetry provider.
*/
package jwt
