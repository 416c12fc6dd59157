package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	jwt "github.com/auth0/go-jwt"
	"github.com/auth0/go-jwt/internal/oidc"
	"github.com/auth0/go-jwt/signature"
)

// DefaultCacheDuration is how long a fetched key set is used before it is
// refreshed.
const DefaultCacheDuration = 24 * time.Hour

// maxDocumentSize bounds the JWKS response body. Real key sets are a few KB.
const maxDocumentSize = 1 << 20

const refreshKey = "jwks"

// Key selection errors, shared with the root package.
var (
	ErrNoMatchingKey = jwt.ErrNoMatchingKey
	ErrAmbiguousKey  = jwt.ErrAmbiguousKey
)

// HTTPClient issues the discovery and key set requests.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver verifies tokens against a remote JSON Web Key Set.
//
// The key set is fetched on the first verification and again on the first
// verification after the cache duration has elapsed. A failed refresh keeps
// the previous key set, so verification carries on with stale keys. Only one
// fetch is in flight at a time; while it runs, callers holding a previously
// fetched set verify against it without waiting.
//
// Resolver implements jwt.SignatureVerifier and is safe for concurrent use.
type Resolver struct {
	endpoint      string
	issuerURL     *url.URL
	client        HTTPClient
	cacheDuration time.Duration
	provider      signature.Provider
	logger        jwt.Logger
	clock         func() time.Time
	registerer    prometheus.Registerer
	cache         Cache
	metrics       *metrics

	mu          sync.RWMutex
	jwksURI     string
	keySet      JSONWebKeySet
	lastRefresh time.Time
	loaded      bool
	// verifiers memoizes *signature.Verifier by kid for the current key set.
	verifiers *sync.Map

	group      singleflight.Group
	refreshing atomic.Bool
}

// NewResolver builds a Resolver. WithEndpoint or WithIssuerURL is required.
//
// Example:
//
//	resolver, err := jwks.NewResolver(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithCacheDuration(time.Hour),
//	)
//	if err != nil {
//	    return err
//	}
//	verifier, err := jwt.NewVerifier(
//	    jwt.WithAlgorithms(resolver, jwt.RS256, jwt.ES256),
//	)
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		client:        &http.Client{Timeout: 30 * time.Second},
		cacheDuration: DefaultCacheDuration,
		provider:      signature.NewProvider(),
		logger:        jwt.NewLogrusLogger(logrus.StandardLogger()),
		clock:         time.Now,
		verifiers:     new(sync.Map),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if r.endpoint == "" && r.issuerURL == nil {
		return nil, errors.New("endpoint or issuer URL is required (use WithEndpoint or WithIssuerURL)")
	}
	r.jwksURI = r.endpoint

	m, err := newMetrics(r.registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	r.metrics = m

	return r, nil
}

// Verify selects the key for token's kid and checks its signature with it.
//
// It fails with ErrNoMatchingKey or ErrAmbiguousKey when no key can be
// selected. A signature mismatch yields false with a nil error.
func (r *Resolver) Verify(ctx context.Context, token *jwt.Token) (bool, error) {
	if token == nil {
		return false, fmt.Errorf("%w: nil token", jwt.ErrMalformedToken)
	}

	set, verifiers := r.current(ctx)

	key, err := set.Select(token.Header().KeyID)
	if err != nil {
		return false, err
	}

	verifier, err := r.verifierFor(verifiers, key)
	if err != nil {
		return false, err
	}

	return verifier.Verify(ctx, token)
}

// KeySet returns the key set currently in use.
func (r *Resolver) KeySet() JSONWebKeySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keySet
}

// Refresh fetches the key set now, regardless of its age. On failure the
// previous key set stays in use and the error is returned.
func (r *Resolver) Refresh(ctx context.Context) error {
	return r.refresh(ctx, true)
}

// current returns the key set to verify against, refreshing it first when it
// is stale. Once a set has been loaded, only one caller refreshes and the rest
// use the set they already see.
func (r *Resolver) current(ctx context.Context) (JSONWebKeySet, *sync.Map) {
	r.mu.RLock()
	set, verifiers, loaded, stale := r.keySet, r.verifiers, r.loaded, r.staleLocked()
	r.mu.RUnlock()

	if !stale {
		return set, verifiers
	}

	if loaded {
		if !r.refreshing.CompareAndSwap(false, true) {
			return set, verifiers
		}
		defer r.refreshing.Store(false)
	}

	// Failures are logged by fetch.
	_ = r.refresh(ctx, false)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keySet, r.verifiers
}

func (r *Resolver) staleLocked() bool {
	return r.lastRefresh.IsZero() || r.clock().Sub(r.lastRefresh) > r.cacheDuration
}

func (r *Resolver) refresh(ctx context.Context, force bool) error {
	_, err, _ := r.group.Do(refreshKey, func() (any, error) {
		if !force {
			r.mu.RLock()
			stale := r.staleLocked()
			r.mu.RUnlock()
			if !stale {
				return nil, nil
			}
		}
		return nil, r.fetch(context.WithoutCancel(ctx))
	})
	return err
}

// fetch loads the key set and installs it. The existing set and refresh time
// are left untouched on failure.
func (r *Resolver) fetch(ctx context.Context) error {
	uri, err := r.keySetURI(ctx)
	if err != nil {
		r.failed(r.issuerURL.String(), err)
		return err
	}

	set, source, fetchedAt, err := r.load(ctx, uri)
	if err != nil {
		r.failed(uri, err)
		return err
	}

	r.mu.Lock()
	r.keySet = set
	r.lastRefresh = fetchedAt
	r.verifiers = new(sync.Map)
	r.loaded = true
	r.mu.Unlock()

	r.metrics.refreshed(source, set.Len())
	r.logger.Debug("JWKS refreshed", "uri", uri, "keys", set.Len(), "source", source)
	return nil
}

func (r *Resolver) failed(uri string, err error) {
	r.metrics.refreshed(RefreshFailed, 0)
	r.logger.Warn("JWKS refresh failed, keeping cached keys", "uri", uri, "error", err)
}

// load reads the document from the shared cache when one is configured and
// holds a fresh copy, and from the endpoint otherwise. It returns the time
// the document was fetched from the endpoint, which is when its cache
// duration started.
func (r *Resolver) load(ctx context.Context, uri string) (JSONWebKeySet, string, time.Time, error) {
	if r.cache != nil {
		document, fetchedAt, err := r.cache.Get(ctx, uri)
		switch {
		case err == nil && r.clock().Sub(fetchedAt) > r.cacheDuration:
			r.logger.Debug("Ignoring expired JWKS in shared cache", "uri", uri, "fetched_at", fetchedAt)
		case err == nil:
			set, err := ParseKeySet(document)
			if err == nil {
				return set, RefreshSharedCache, fetchedAt, nil
			}
			r.logger.Warn("Ignoring unparsable JWKS in shared cache", "uri", uri, "error", err)
		case !errors.Is(err, ErrCacheMiss):
			r.logger.Warn("JWKS shared cache unavailable", "uri", uri, "error", err)
		}
	}

	document, err := r.fetchDocument(ctx, uri)
	if err != nil {
		return JSONWebKeySet{}, "", time.Time{}, err
	}
	fetchedAt := r.clock()

	set, err := ParseKeySet(document)
	if err != nil {
		return JSONWebKeySet{}, "", time.Time{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, uri, document, fetchedAt, r.cacheDuration); err != nil {
			r.logger.Warn("Failed to store JWKS in shared cache", "uri", uri, "error", err)
		}
	}

	return set, RefreshFetched, fetchedAt, nil
}

func (r *Resolver) fetchDocument(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS from %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request returned status %d, expected 200", resp.StatusCode)
	}

	document, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read JWKS response: %w", err)
	}
	if len(document) > maxDocumentSize {
		return nil, fmt.Errorf("JWKS response exceeds %d bytes", maxDocumentSize)
	}

	return document, nil
}

// keySetURI returns the configured endpoint, running OIDC discovery against
// the issuer the first time when no endpoint was given.
func (r *Resolver) keySetURI(ctx context.Context) (string, error) {
	r.mu.RLock()
	uri := r.jwksURI
	r.mu.RUnlock()
	if uri != "" {
		return uri, nil
	}

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, r.client, *r.issuerURL, r.issuerURL.String())
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.jwksURI = endpoints.JWKSURI
	r.mu.Unlock()

	return endpoints.JWKSURI, nil
}

func (r *Resolver) verifierFor(verifiers *sync.Map, key JSONWebKey) (*signature.Verifier, error) {
	if cached, ok := verifiers.Load(key.KeyID); ok {
		return cached.(*signature.Verifier), nil
	}

	verifier, err := r.newVerifier(key)
	if err != nil {
		return nil, err
	}

	actual, _ := verifiers.LoadOrStore(key.KeyID, verifier)
	return actual.(*signature.Verifier), nil
}

// newVerifier builds the verifier for key. RSA keys advertising an algorithm
// are bound to its scheme; those without one accept both RSA schemes.
func (r *Resolver) newVerifier(key JSONWebKey) (*signature.Verifier, error) {
	material := signature.Decoded(key.Key)
	withProvider := signature.WithProvider(r.provider)

	switch key.Type {
	case KeyTypeRSA:
		switch {
		case key.Algorithm == "":
			return signature.NewRSAVerifier(material, withProvider)
		case key.Algorithm.Family() == jwt.FamilyPSS:
			return signature.NewPSSVerifier(material, withProvider)
		case key.Algorithm.Family() == jwt.FamilyPKCS1:
			return signature.NewPKCS1Verifier(material, withProvider)
		}
	case KeyTypeEC:
		return signature.NewECDSAVerifier(material, withProvider)
	case KeyTypeOct:
		return signature.NewHMACVerifier(material, withProvider)
	}

	return nil, fmt.Errorf("%w: %q for %s key %q", jwt.ErrUnsupportedAlgorithm, key.Algorithm, key.Type, key.KeyID)
}
