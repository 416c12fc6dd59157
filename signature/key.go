package signature

// KeyFormat is the encoding of key material handed to a Provider.
type KeyFormat int

const (
	// FormatRaw is unencoded bytes, used for HMAC secrets.
	FormatRaw KeyFormat = iota
	// FormatPEM is a PEM block holding a PKCS#1, PKCS#8, SEC 1 or PKIX key.
	FormatPEM
	// FormatDER is the DER encoding of a PKCS#1, PKCS#8, SEC 1 or PKIX key.
	FormatDER
	// FormatJWK is a single JSON Web Key.
	FormatJWK
	// FormatDecoded is an already decoded key value.
	FormatDecoded
)

func (f KeyFormat) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatPEM:
		return "PEM"
	case FormatDER:
		return "DER"
	case FormatJWK:
		return "JWK"
	case FormatDecoded:
		return "decoded"
	default:
		return "unknown"
	}
}

// Key is key material together with its encoding.
type Key struct {
	Format KeyFormat
	Data   []byte
	Value  any
}

// Secret wraps a raw HMAC secret.
func Secret(secret []byte) Key {
	return Key{Format: FormatRaw, Data: secret}
}

// PEM wraps PEM-encoded key material.
func PEM(data []byte) Key {
	return Key{Format: FormatPEM, Data: data}
}

// DER wraps DER-encoded key material.
func DER(data []byte) Key {
	return Key{Format: FormatDER, Data: data}
}

// JWK wraps a JSON Web Key document.
func JWK(data []byte) Key {
	return Key{Format: FormatJWK, Data: data}
}

// Decoded wraps a key that has already been decoded, such as an
// *rsa.PublicKey, an *ecdsa.PrivateKey or a []byte secret.
func Decoded(value any) Key {
	return Key{Format: FormatDecoded, Value: value}
}
