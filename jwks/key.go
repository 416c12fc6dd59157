package jwks

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"

	jwt "github.com/auth0/go-jwt"
)

// KeyType is the "kty" of a JSON Web Key.
type KeyType string

// Supported key types
const (
	KeyTypeRSA KeyType = "RSA"
	KeyTypeEC  KeyType = "EC"
	KeyTypeOct KeyType = "oct"
)

// JSONWebKey is a verification key taken from a key set.
//
// Key holds *rsa.PublicKey for RSA keys, *ecdsa.PublicKey for EC keys and
// the shared secret as []byte for oct keys.
type JSONWebKey struct {
	Type      KeyType
	KeyID     string
	Algorithm jwt.Algorithm
	Use       string
	Curve     string
	Key       any
}

// JSONWebKeySet is an ordered, immutable set of keys.
type JSONWebKeySet struct {
	keys []JSONWebKey
}

// ParseKeySet parses a JWKS document. Keys of types other than RSA, EC and
// oct are skipped.
func ParseKeySet(document []byte) (JSONWebKeySet, error) {
	set, err := jwk.Parse(document)
	if err != nil {
		return JSONWebKeySet{}, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make([]JSONWebKey, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}

		parsed, supported, err := fromJWK(key)
		if err != nil {
			return JSONWebKeySet{}, fmt.Errorf("key %d (kid %q): %w", i, key.KeyID(), err)
		}
		if supported {
			keys = append(keys, parsed)
		}
	}

	return JSONWebKeySet{keys: keys}, nil
}

func fromJWK(key jwk.Key) (JSONWebKey, bool, error) {
	out := JSONWebKey{
		KeyID: key.KeyID(),
		Use:   key.KeyUsage(),
	}
	if alg := key.Algorithm(); alg != nil {
		out.Algorithm = jwt.Algorithm(alg.String())
	}

	var raw any
	switch key.KeyType() {
	case jwa.RSA:
		out.Type = KeyTypeRSA
	case jwa.EC:
		out.Type = KeyTypeEC
	case jwa.OctetSeq:
		out.Type = KeyTypeOct
	default:
		return JSONWebKey{}, false, nil
	}

	if err := key.Raw(&raw); err != nil {
		return JSONWebKey{}, false, fmt.Errorf("failed to extract key material: %w", err)
	}

	switch k := raw.(type) {
	case *rsa.PublicKey:
		out.Key = k
	case *rsa.PrivateKey:
		out.Key = &k.PublicKey
	case *ecdsa.PublicKey:
		out.Key = k
		out.Curve = k.Curve.Params().Name
	case *ecdsa.PrivateKey:
		out.Key = &k.PublicKey
		out.Curve = k.Curve.Params().Name
	case []byte:
		out.Key = k
	default:
		return JSONWebKey{}, false, fmt.Errorf("unexpected key material %T", raw)
	}

	return out, true, nil
}

// NewKeySet returns a set holding keys in order.
func NewKeySet(keys ...JSONWebKey) JSONWebKeySet {
	return JSONWebKeySet{keys: append([]JSONWebKey(nil), keys...)}
}

// Len returns the number of keys.
func (s JSONWebKeySet) Len() int {
	return len(s.keys)
}

// Keys returns the keys in order.
func (s JSONWebKeySet) Keys() []JSONWebKey {
	return append([]JSONWebKey(nil), s.keys...)
}

// Select picks the key for a token carrying kid.
//
// With a kid, the first key with that kid is returned, or ErrNoMatchingKey.
// Without one, the set must hold exactly one key, or ErrAmbiguousKey.
func (s JSONWebKeySet) Select(kid string) (JSONWebKey, error) {
	if kid == "" {
		if len(s.keys) != 1 {
			return JSONWebKey{}, fmt.Errorf("%w: token has no kid and the key set holds %d keys", ErrAmbiguousKey, len(s.keys))
		}
		return s.keys[0], nil
	}

	for _, key := range s.keys {
		if key.KeyID == kid {
			return key, nil
		}
	}
	return JSONWebKey{}, fmt.Errorf("%w: kid %q", ErrNoMatchingKey, kid)
}
