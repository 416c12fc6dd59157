package signature

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	jwt "github.com/auth0/go-jwt"
)

// Provider supplies the cryptographic primitives the family adapters are
// built on: key decoding and raw signing and verification.
type Provider interface {
	// DecodePrivateKey decodes signing key material for family.
	DecodePrivateKey(family jwt.Family, key Key) (any, error)

	// DecodePublicKey decodes verification key material for family.
	// Private keys are accepted and reduced to their public half.
	DecodePublicKey(family jwt.Family, key Key) (any, error)

	// Sign signs data with key using the digest and scheme of alg.
	Sign(alg jwt.Algorithm, key any, data []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of data. A mismatch is
	// false with a nil error; errors mean the check could not run.
	Verify(alg jwt.Algorithm, key any, data, sig []byte) (bool, error)
}

// DefaultProvider implements Provider with the signing methods of
// github.com/golang-jwt/jwt/v5. PEM keys are parsed with golang-jwt's
// helpers, DER keys with crypto/x509 and JWKs with jwx.
type DefaultProvider struct{}

// NewProvider returns the default Provider.
func NewProvider() *DefaultProvider {
	return &DefaultProvider{}
}

// DecodePrivateKey implements Provider.
func (p *DefaultProvider) DecodePrivateKey(family jwt.Family, key Key) (any, error) {
	switch family {
	case jwt.FamilyHMAC:
		return decodeSecret(key)
	case jwt.FamilyPKCS1, jwt.FamilyPSS:
		return decodeRSAPrivateKey(key)
	case jwt.FamilyECDSA:
		return decodeECDSAPrivateKey(key)
	default:
		return nil, fmt.Errorf("%w: family %q", jwt.ErrUnsupportedAlgorithm, family)
	}
}

// DecodePublicKey implements Provider.
func (p *DefaultProvider) DecodePublicKey(family jwt.Family, key Key) (any, error) {
	switch family {
	case jwt.FamilyHMAC:
		return decodeSecret(key)
	case jwt.FamilyPKCS1, jwt.FamilyPSS:
		return decodeRSAPublicKey(key)
	case jwt.FamilyECDSA:
		return decodeECDSAPublicKey(key)
	default:
		return nil, fmt.Errorf("%w: family %q", jwt.ErrUnsupportedAlgorithm, family)
	}
}

// Sign implements Provider.
func (p *DefaultProvider) Sign(alg jwt.Algorithm, key any, data []byte) ([]byte, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return nil, err
	}
	return method.Sign(string(data), key)
}

// Verify implements Provider.
func (p *DefaultProvider) Verify(alg jwt.Algorithm, key any, data, sig []byte) (bool, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return false, err
	}

	err = method.Verify(string(data), sig, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gojwt.ErrInvalidKeyType),
		errors.Is(err, gojwt.ErrInvalidKey),
		errors.Is(err, gojwt.ErrHashUnavailable):
		return false, err
	default:
		return false, nil
	}
}

func signingMethod(alg jwt.Algorithm) (gojwt.SigningMethod, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	method := gojwt.GetSigningMethod(alg.String())
	if method == nil {
		return nil, fmt.Errorf("%w: %q", jwt.ErrUnsupportedAlgorithm, alg)
	}
	return method, nil
}

func decodeSecret(key Key) ([]byte, error) {
	var secret []byte
	switch key.Format {
	case FormatRaw:
		secret = key.Data
	case FormatDecoded:
		b, ok := key.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte secret, got %T", key.Value)
		}
		secret = b
	case FormatJWK:
		raw, err := rawJWK(key.Data)
		if err != nil {
			return nil, err
		}
		b, ok := raw.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected oct key, got %T", raw)
		}
		secret = b
	default:
		return nil, fmt.Errorf("unsupported secret format %s", key.Format)
	}

	if len(secret) == 0 {
		return nil, errors.New("secret cannot be empty")
	}
	out := make([]byte, len(secret))
	copy(out, secret)
	return out, nil
}

func decodeRSAPrivateKey(key Key) (*rsa.PrivateKey, error) {
	var value any
	switch key.Format {
	case FormatPEM:
		return gojwt.ParseRSAPrivateKeyFromPEM(key.Data)
	case FormatDER:
		parsed, err := parseDERPrivateKey(key.Data)
		if err != nil {
			return nil, err
		}
		value = parsed
	case FormatJWK:
		raw, err := rawJWK(key.Data)
		if err != nil {
			return nil, err
		}
		value = raw
	case FormatDecoded:
		value = key.Value
	default:
		return nil, fmt.Errorf("unsupported RSA private key format %s", key.Format)
	}

	privateKey, ok := value.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected *rsa.PrivateKey, got %T", value)
	}
	return privateKey, nil
}

func decodeRSAPublicKey(key Key) (*rsa.PublicKey, error) {
	var value any
	switch key.Format {
	case FormatPEM:
		return gojwt.ParseRSAPublicKeyFromPEM(key.Data)
	case FormatDER:
		parsed, err := parseDERPublicKey(key.Data)
		if err != nil {
			return nil, err
		}
		value = parsed
	case FormatJWK:
		raw, err := rawJWK(key.Data)
		if err != nil {
			return nil, err
		}
		value = raw
	case FormatDecoded:
		value = key.Value
	default:
		return nil, fmt.Errorf("unsupported RSA public key format %s", key.Format)
	}

	switch k := value.(type) {
	case *rsa.PublicKey:
		return k, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, fmt.Errorf("expected RSA key, got %T", value)
	}
}

func decodeECDSAPrivateKey(key Key) (*ecdsa.PrivateKey, error) {
	var value any
	switch key.Format {
	case FormatPEM:
		return gojwt.ParseECPrivateKeyFromPEM(key.Data)
	case FormatDER:
		parsed, err := parseDERPrivateKey(key.Data)
		if err != nil {
			return nil, err
		}
		value = parsed
	case FormatJWK:
		raw, err := rawJWK(key.Data)
		if err != nil {
			return nil, err
		}
		value = raw
	case FormatDecoded:
		value = key.Value
	default:
		return nil, fmt.Errorf("unsupported ECDSA private key format %s", key.Format)
	}

	privateKey, ok := value.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected *ecdsa.PrivateKey, got %T", value)
	}
	return privateKey, nil
}

func decodeECDSAPublicKey(key Key) (*ecdsa.PublicKey, error) {
	var value any
	switch key.Format {
	case FormatPEM:
		return gojwt.ParseECPublicKeyFromPEM(key.Data)
	case FormatDER:
		parsed, err := parseDERPublicKey(key.Data)
		if err != nil {
			return nil, err
		}
		value = parsed
	case FormatJWK:
		raw, err := rawJWK(key.Data)
		if err != nil {
			return nil, err
		}
		value = raw
	case FormatDecoded:
		value = key.Value
	default:
		return nil, fmt.Errorf("unsupported ECDSA public key format %s", key.Format)
	}

	switch k := value.(type) {
	case *ecdsa.PublicKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, fmt.Errorf("expected ECDSA key, got %T", value)
	}
}

// parseDERPrivateKey tries PKCS#8, then PKCS#1, then SEC 1.
func parseDERPrivateKey(der []byte) (any, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("failed to parse DER private key")
}

// parseDERPublicKey tries PKIX, then PKCS#1, then a certificate.
func parseDERPublicKey(der []byte) (any, error) {
	if key, err := x509.ParsePKIXPublicKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}
	if cert, err := x509.ParseCertificate(der); err == nil {
		return cert.PublicKey, nil
	}
	return nil, errors.New("failed to parse DER public key")
}

func rawJWK(data []byte) (any, error) {
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWK: %w", err)
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract JWK key material: %w", err)
	}
	return raw, nil
}
