/*
Package jwks resolves token verification keys from a remote JSON Web Key Set.

A Resolver fetches the key set published by an identity provider, picks the
key named by a token's "kid" header and checks the token's signature with it.
It plugs into jwt.Verifier as the signature verifier for the asymmetric (or
shared-secret) algorithms the provider signs with.

# Usage

	endpoint, _ := url.Parse("https://auth.example.com/.well-known/jwks.json")

	resolver, err := jwks.NewResolver(jwks.WithEndpoint(endpoint))
	if err != nil {
	    log.Fatal(err)
	}

	verifier, err := jwt.NewVerifier(
	    jwt.WithAlgorithms(resolver, jwt.RS256, jwt.PS256, jwt.ES256),
	    jwt.WithIssuers("https://auth.example.com/"),
	    jwt.WithAudiences("my-api"),
	    jwt.WithExpiryCheck(),
	)

With WithIssuerURL instead of WithEndpoint, the endpoint is taken from the
issuer's OpenID Connect discovery document. The document's issuer must equal
the configured issuer URL.

# Caching

The key set is fetched by the first verification and reused until the cache
duration (DefaultCacheDuration unless WithCacheDuration is given) has
elapsed. The next verification after that refreshes it. There are no
background timers.

Refreshes are single-flighted. Before the first successful fetch, concurrent
callers wait for the one fetch in flight. Afterwards, callers that arrive
while a refresh is running verify against the previous key set.

A refresh that fails, whether through a transport error, a non-200 status or
an unparsable document, is logged and leaves the previous key set and its
refresh time in place. Verification keeps working with stale keys, and the
next verification retries.

Verifiers built from keys are memoized per kid for as long as the key set
they came from is in use.

# Key selection

A token with a kid is verified with the first key carrying that kid, or
fails with ErrNoMatchingKey. A token without a kid is verified with the only
key of a single-key set, or fails with ErrAmbiguousKey.

RSA keys that advertise an "alg" accept only that scheme (RSASSA-PKCS1-v1_5
or RSASSA-PSS); RSA keys without one accept both. EC keys accept the
algorithm matching their curve. The digest always comes from the token's
"alg" header. Keys of types other than RSA, EC and oct are ignored.

# Shared cache

WithCache shares fetched documents between processes. RedisCache stores them
in Redis for the cache duration:

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	cache, _ := jwks.NewRedisCache(rdb, "")

	resolver, err := jwks.NewResolver(
	    jwks.WithEndpoint(endpoint),
	    jwks.WithCache(cache),
	)

A refresh reads the shared cache first and falls back to the endpoint on a
miss. Shared cache failures are logged and never fail a refresh.

# Metrics

WithRegisterer exposes jwks_refresh_total, labelled by result ("fetched",
"shared_cache", "failed"), and jwks_keys, the size of the current key set.
*/
package jwks
