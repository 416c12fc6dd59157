package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config is read from JWT_* environment variables and overridden by flags.
type config struct {
	Algorithm      string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	Secret         string        `env:"JWT_SECRET"`
	KeyFile        string        `env:"JWT_KEY_FILE"`
	KeyID          string        `env:"JWT_KEY_ID"`
	JWKSURL        string        `env:"JWT_JWKS_URL"`
	IssuerURL      string        `env:"JWT_ISSUER_URL"`
	JWKSCacheTTL   time.Duration `env:"JWT_JWKS_CACHE_TTL"`
	RedisURL       string        `env:"JWT_REDIS_URL"`
	Issuer         string        `env:"JWT_ISSUER"`
	Audience       []string      `env:"JWT_AUDIENCE" envSeparator:","`
	ExpiresIn      time.Duration `env:"JWT_EXPIRES_IN" envDefault:"1h"`
	Leeway         time.Duration `env:"JWT_LEEWAY"`
	SkipExpiry     bool          `env:"JWT_SKIP_EXPIRY"`
	CheckNotBefore bool          `env:"JWT_CHECK_NOT_BEFORE"`
	Addr           string        `env:"JWT_ADDR" envDefault:":8080"`
	Realm          string        `env:"JWT_REALM"`
	LogLevel       string        `env:"JWT_LOG_LEVEL" envDefault:"info"`
}

// loadConfig parses environ, or the process environment after loading an
// optional .env file when environ is nil.
func loadConfig(environ map[string]string) (config, error) {
	if environ == nil {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// bindFlags registers flags overriding the key and claim settings of c.
func (c *config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Algorithm, "alg", c.Algorithm, "signature algorithm")
	fs.StringVar(&c.Secret, "secret", c.Secret, "HMAC secret")
	fs.StringVar(&c.KeyFile, "key", c.KeyFile, "key file (PEM, .der or .jwk/.json)")
	fs.StringVar(&c.KeyID, "kid", c.KeyID, "key ID header")
	fs.StringVar(&c.JWKSURL, "jwks", c.JWKSURL, "JWKS endpoint to verify against")
	fs.StringVar(&c.IssuerURL, "issuer-url", c.IssuerURL, "OIDC issuer to discover the JWKS endpoint from")
	fs.StringVar(&c.Issuer, "iss", c.Issuer, "issuer claim")
	fs.Var(&listFlag{values: &c.Audience}, "aud", "audience claim, repeatable")
	fs.DurationVar(&c.ExpiresIn, "exp", c.ExpiresIn, "token lifetime")
	fs.DurationVar(&c.Leeway, "leeway", c.Leeway, "clock skew tolerated when verifying")
}

// listFlag is a repeatable flag. The first use replaces the default.
type listFlag struct {
	values *[]string
	set    bool
}

func (f *listFlag) String() string {
	if f.values == nil {
		return ""
	}
	return strings.Join(*f.values, ",")
}

func (f *listFlag) Set(value string) error {
	if !f.set {
		*f.values = nil
		f.set = true
	}
	*f.values = append(*f.values, value)
	return nil
}
