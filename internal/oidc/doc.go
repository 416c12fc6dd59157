/*
Package oidc discovers the JWKS endpoint of an OpenID Connect issuer.

The discovery document is published at a well-known URL below the issuer:

	https://issuer.example.com/.well-known/openid-configuration

Only the "issuer" and "jwks_uri" members are read. A document whose issuer
differs from the one it was fetched for is rejected.

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, http.DefaultClient, *issuerURL)
	if err != nil {
	    return err
	}
	jwksURI := endpoints.JWKSURI

See OpenID Connect Discovery 1.0,
https://openid.net/specs/openid-connect-discovery-1_0.html
*/
package oidc
