package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	jwt "github.com/auth0/go-jwt"
	"github.com/auth0/go-jwt/jwks"
	"github.com/auth0/go-jwt/signature"
)

func (c config) algorithm() (jwt.Algorithm, error) {
	alg := jwt.Algorithm(strings.ToUpper(c.Algorithm))
	if !alg.Valid() {
		return "", fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return alg, nil
}

// key returns the configured key for alg. HMAC algorithms take JWT_SECRET or
// the raw contents of JWT_KEY_FILE; the others read JWT_KEY_FILE in the
// format its extension names.
func (c config) key(alg jwt.Algorithm) (signature.Key, error) {
	if alg.Family() == jwt.FamilyHMAC && c.Secret != "" {
		return signature.Secret([]byte(c.Secret)), nil
	}
	if c.KeyFile == "" {
		if alg.Family() == jwt.FamilyHMAC {
			return signature.Key{}, fmt.Errorf("JWT_SECRET or JWT_KEY_FILE is required for %s", alg)
		}
		return signature.Key{}, fmt.Errorf("JWT_KEY_FILE is required for %s", alg)
	}

	data, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return signature.Key{}, fmt.Errorf("failed to read key file: %w", err)
	}
	if alg.Family() == jwt.FamilyHMAC {
		return signature.Secret(data), nil
	}

	switch strings.ToLower(filepath.Ext(c.KeyFile)) {
	case ".jwk", ".json":
		return signature.JWK(data), nil
	case ".der":
		return signature.DER(data), nil
	default:
		return signature.PEM(data), nil
	}
}

func (c config) newSigner() (*signature.Signer, error) {
	alg, err := c.algorithm()
	if err != nil {
		return nil, err
	}
	key, err := c.key(alg)
	if err != nil {
		return nil, err
	}

	registry, err := signature.NewRegistry()
	if err != nil {
		return nil, err
	}
	return registry.Signer(alg, key)
}

// newVerifier trusts the configured algorithm, with keys from the JWKS
// endpoint when one is configured and from the configured key otherwise.
func (c config) newVerifier(logger *logrus.Logger, reg prometheus.Registerer) (*jwt.Verifier, error) {
	alg, err := c.algorithm()
	if err != nil {
		return nil, err
	}

	registry, err := signature.NewRegistry()
	if err != nil {
		return nil, err
	}

	if c.JWKSURL != "" || c.IssuerURL != "" {
		resolver, err := c.newResolver(logger, reg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(alg, resolver); err != nil {
			return nil, err
		}
	} else {
		key, err := c.key(alg)
		if err != nil {
			return nil, err
		}
		if _, err := registry.Verifier(alg, key); err != nil {
			return nil, err
		}
	}

	opts := []jwt.VerifierOption{
		jwt.WithVerifiers(registry.Verifiers()),
		jwt.WithLogger(jwt.NewLogrusLogger(logger)),
	}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuers(c.Issuer))
	}
	if len(c.Audience) > 0 {
		opts = append(opts, jwt.WithAudiences(c.Audience...))
	}
	if !c.SkipExpiry {
		opts = append(opts, jwt.WithExpiryCheck())
	}
	if c.CheckNotBefore {
		opts = append(opts, jwt.WithNotBeforeCheck())
	}
	if c.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(c.Leeway))
	}

	return jwt.NewVerifier(opts...)
}

func (c config) newResolver(logger *logrus.Logger, reg prometheus.Registerer) (*jwks.Resolver, error) {
	opts := []jwks.Option{
		jwks.WithLogger(jwt.NewLogrusLogger(logger)),
		jwks.WithCacheDuration(c.JWKSCacheTTL),
	}

	switch {
	case c.JWKSURL != "":
		endpoint, err := url.Parse(c.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("invalid JWKS URL: %w", err)
		}
		opts = append(opts, jwks.WithEndpoint(endpoint))
	case c.IssuerURL != "":
		issuerURL, err := url.Parse(c.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("invalid issuer URL: %w", err)
		}
		opts = append(opts, jwks.WithIssuerURL(issuerURL))
	default:
		return nil, errors.New("JWT_JWKS_URL or JWT_ISSUER_URL is required")
	}

	if reg != nil {
		opts = append(opts, jwks.WithRegisterer(reg))
	}

	if c.RedisURL != "" {
		redisOpts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		cache, err := jwks.NewRedisCache(redis.NewClient(redisOpts), "")
		if err != nil {
			return nil, err
		}
		opts = append(opts, jwks.WithCache(cache))
	}

	return jwks.NewResolver(opts...)
}
