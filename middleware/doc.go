/*
Package jwtmiddleware authenticates net/http requests with a JWT bearer token.

The middleware extracts a token from the request, checks it with a
TokenVerifier (usually a *jwt.Verifier) and stores the verified token in the
request context for the next handler.

# Usage

	verifier, err := jwt.NewVerifier(
	    jwt.WithAlgorithms(resolver, jwt.RS256),
	    jwt.WithIssuers("https://auth.example.com/"),
	    jwt.WithAudiences("my-api"),
	    jwt.WithExpiryCheck(),
	)
	if err != nil {
	    log.Fatal(err)
	}

	middleware, err := jwtmiddleware.New(
	    jwtmiddleware.WithVerifier(verifier),
	    jwtmiddleware.WithRealm("my-api"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	http.Handle("/api/", middleware.CheckJWT(apiHandler))

Handlers read the token back with GetToken, or decode its claims into a
struct with GetClaims:

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    token := jwtmiddleware.MustGetToken(r.Context())
	    subject, _ := token.Claims().Subject()
	    fmt.Fprintf(w, "hello %s", subject)
	}

# Errors

A request without a token fails with ErrJWTMissing unless
WithCredentialsOptional(true) is set, in which case it proceeds without a
token in the context. A token that is malformed, uses an untrusted algorithm,
names no usable key or fails verification fails with an error matching
ErrJWTInvalid; the cause stays reachable through errors.Is and errors.As.
Other verifier failures are passed to the error handler unchanged.

DefaultErrorHandler writes a JSON ErrorResponse and an RFC 6750
WWW-Authenticate challenge carrying the configured scheme and realm.

# Schemes

AuthHeaderTokenExtractor accepts "Bearer" tokens. WithAuthSchemes changes the
accepted schemes of the default extractor and the scheme announced in
challenges. CookieTokenExtractor, ParameterTokenExtractor and
MultiTokenExtractor cover tokens sent elsewhere.
*/
package jwtmiddleware
