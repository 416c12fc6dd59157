package jwks

import (
	"errors"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	jwt "github.com/auth0/go-jwt"
	"github.com/auth0/go-jwt/signature"
)

// Option is how options for the Resolver are set up.
type Option func(*Resolver) error

// WithEndpoint sets the URL the key set is fetched from.
func WithEndpoint(endpoint *url.URL) Option {
	return func(r *Resolver) error {
		if endpoint == nil {
			return errors.New("endpoint cannot be nil")
		}
		r.endpoint = endpoint.String()
		return nil
	}
}

// WithIssuerURL sets the OIDC issuer whose discovery document names the
// key set endpoint. It is ignored when WithEndpoint is also given.
//
// Discovery runs on the first refresh and its result is kept for the life of
// the resolver.
func WithIssuerURL(issuerURL *url.URL) Option {
	return func(r *Resolver) error {
		if issuerURL == nil {
			return errors.New("issuer URL cannot be nil")
		}
		r.issuerURL = issuerURL
		return nil
	}
}

// WithHTTPClient sets the client used for discovery and key set fetches.
// If not specified, an *http.Client with a 30s timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(r *Resolver) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		r.client = client
		return nil
	}
}

// WithCacheDuration sets how long a fetched key set is used before the next
// verification refreshes it. Zero selects DefaultCacheDuration.
func WithCacheDuration(d time.Duration) Option {
	return func(r *Resolver) error {
		if d < 0 {
			return errors.New("cache duration cannot be negative")
		}
		if d == 0 {
			d = DefaultCacheDuration
		}
		r.cacheDuration = d
		return nil
	}
}

// WithProvider sets the cryptographic provider of the per-key verifiers.
func WithProvider(provider signature.Provider) Option {
	return func(r *Resolver) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		r.provider = provider
		return nil
	}
}

// WithLogger sets the logger. It defaults to the logrus standard logger.
func WithLogger(logger jwt.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithClock sets the clock the cache duration is measured with.
func WithClock(clock func() time.Time) Option {
	return func(r *Resolver) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		r.clock = clock
		return nil
	}
}

// WithRegisterer registers the resolver's Prometheus collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Resolver) error {
		if reg == nil {
			return errors.New("registerer cannot be nil")
		}
		r.registerer = reg
		return nil
	}
}

// WithCache shares fetched documents through cache. The cache is consulted
// before the endpoint on every refresh. A document read from the cache keeps
// the age it had when it was fetched, so it is used for no longer than the
// cache duration in total.
//
// Example:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cache, _ := jwks.NewRedisCache(rdb, "")
//	resolver, err := jwks.NewResolver(
//	    jwks.WithEndpoint(endpoint),
//	    jwks.WithCache(cache),
//	)
func WithCache(cache Cache) Option {
	return func(r *Resolver) error {
		if cache == nil {
			return errors.New("cache cannot be nil")
		}
		r.cache = cache
		return nil
	}
}
