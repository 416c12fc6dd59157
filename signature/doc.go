/*
Package signature adapts HMAC, RSA and ECDSA keys to the jwt.Signer and
jwt.SignatureVerifier interfaces.

Each family adapter decodes its key once, at construction, through a
Provider. The default Provider delegates raw signing and verification to
github.com/golang-jwt/jwt/v5 and accepts keys as raw secrets, PEM, DER, JWK
or already decoded values.

	signer, err := signature.NewRSASigner(jwt.RS256, signature.PEM(privatePEM))
	if err != nil {
	    log.Fatal(err)
	}

	verifier, err := signature.NewPKCS1Verifier(signature.PEM(publicPEM))
	if err != nil {
	    log.Fatal(err)
	}

A verifier takes the digest from the token being verified and refuses
tokens whose algorithm belongs to another family with
jwt.ErrUnsupportedAlgorithm. ECDSA verifiers further accept only the
algorithm defined on their key's curve.

A Registry collects signers and verifiers by algorithm:

	registry, _ := signature.NewRegistry()
	_, _ = registry.Verifier(jwt.HS256, signature.Secret(secret))
	_, _ = registry.Verifier(jwt.ES256, signature.PEM(ecPublicPEM))

	verifier, err := jwt.NewVerifier(jwt.WithVerifiers(registry.Verifiers()))
*/
package signature
