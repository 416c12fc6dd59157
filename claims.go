package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"time"
)

// Registered claim names (RFC 7519 section 4.1).
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// registeredClaims is the order in which the builder lays out registered claims.
var registeredClaims = []string{
	ClaimIssuer,
	ClaimSubject,
	ClaimAudience,
	ClaimExpiresAt,
	ClaimNotBefore,
	ClaimIssuedAt,
	ClaimID,
}

// Claims is the ordered JSON object carried as a token payload.
//
// Values are held as compact JSON text, so arbitrary members (numbers
// included) survive an encode/decode cycle exactly. The zero value is an
// empty claim set. Claims is immutable once built.
type Claims struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewClaims builds a claim set from m. Keys are laid out in lexical order.
func NewClaims(m map[string]any) (Claims, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var c Claims
	for _, k := range keys {
		raw, err := marshalValue(m[k])
		if err != nil {
			return Claims{}, fmt.Errorf("claim %q: %w", k, err)
		}
		c.set(k, raw)
	}
	return c, nil
}

// Len returns the number of members.
func (c Claims) Len() int {
	return len(c.keys)
}

// Keys returns the member names in order.
func (c Claims) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Has reports whether key is present.
func (c Claims) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Raw returns the JSON text of key.
func (c Claims) Raw(key string) (json.RawMessage, bool) {
	raw, ok := c.values[key]
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true
}

// Get returns the decoded value of key. Numbers are returned as json.Number.
func (c Claims) Get(key string) (any, bool) {
	raw, ok := c.values[key]
	if !ok {
		return nil, false
	}
	v, err := decodeValue(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Decode unmarshals the value of key into dst.
func (c Claims) Decode(key string, dst any) error {
	raw, ok := c.values[key]
	if !ok {
		return fmt.Errorf("claim %q not present", key)
	}
	return json.Unmarshal(raw, dst)
}

// Map returns all members decoded into a map. Numbers are json.Number.
func (c Claims) Map() map[string]any {
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		if v, err := decodeValue(c.values[k]); err == nil {
			out[k] = v
		}
	}
	return out
}

// Issuer returns the "iss" claim.
func (c Claims) Issuer() (string, bool) {
	return c.stringClaim(ClaimIssuer)
}

// Subject returns the "sub" claim.
func (c Claims) Subject() (string, bool) {
	return c.stringClaim(ClaimSubject)
}

// ID returns the "jti" claim.
func (c Claims) ID() (string, bool) {
	return c.stringClaim(ClaimID)
}

// Audience returns the "aud" claim normalized to a slice. Both the single
// string form and the array form of RFC 7519 section 4.1.3 are accepted.
// It returns nil when the claim is absent or not a string/array of strings.
func (c Claims) Audience() []string {
	raw, ok := c.values[ClaimAudience]
	if !ok {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}

	return nil
}

// ExpiresAt returns the "exp" claim.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.numericDate(ClaimExpiresAt)
}

// NotBefore returns the "nbf" claim.
func (c Claims) NotBefore() (time.Time, bool) {
	return c.numericDate(ClaimNotBefore)
}

// IssuedAt returns the "iat" claim.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.numericDate(ClaimIssuedAt)
}

// Equal reports whether c and other hold the same members with the same
// values. Member order and JSON formatting are not significant.
func (c Claims) Equal(other Claims) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for k, raw := range c.values {
		otherRaw, ok := other.values[k]
		if !ok {
			return false
		}
		if bytes.Equal(raw, otherRaw) {
			continue
		}
		a, errA := decodeValue(raw)
		b, errB := decodeValue(otherRaw)
		if errA != nil || errB != nil || !reflect.DeepEqual(a, b) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the members in order.
func (c Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(c.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping member order. A duplicated
// member keeps its first position and its last value.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("claims must be a JSON object")
	}

	var out Claims
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected claim name %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}

		var compacted bytes.Buffer
		if err := json.Compact(&compacted, raw); err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}
		out.set(key, compacted.Bytes())
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after claims object")
	}

	*c = out
	return nil
}

// set stores raw under key. Existing keys keep their position.
func (c *Claims) set(key string, raw json.RawMessage) {
	if c.values == nil {
		c.values = make(map[string]json.RawMessage)
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = raw
}

func (c Claims) stringClaim(key string) (string, bool) {
	raw, ok := c.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// NumericDates outside [0001-01-01, 9999-12-31T23:59:59Z] are rejected so
// that time arithmetic on them cannot overflow.
const (
	minNumericDate = -62135596800
	maxNumericDate = 253402300799
)

// numericDate reads a NumericDate: seconds since the epoch, integral or not.
func (c Claims) numericDate(key string) (time.Time, bool) {
	raw, ok := c.values[key]
	if !ok {
		return time.Time{}, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, false
	}

	if seconds, err := n.Int64(); err == nil {
		if seconds < minNumericDate || seconds > maxNumericDate {
			return time.Time{}, false
		}
		return time.Unix(seconds, 0), true
	}

	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f < minNumericDate || f > maxNumericDate {
		return time.Time{}, false
	}
	seconds, frac := math.Modf(f)
	return time.Unix(int64(seconds), int64(frac*1e9)), true
}

func marshalValue(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return nil, err
	}
	return compacted.Bytes(), nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
