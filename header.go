package jwt

import (
	"encoding/json"
	"fmt"
)

// DefaultType is the "typ" header value written by the builder.
const DefaultType = "JWT"

// Header is the JOSE header of a token. Members other than alg, typ and kid
// are ignored when decoding.
type Header struct {
	Algorithm Algorithm `json:"alg"`
	Type      string    `json:"typ,omitempty"`
	KeyID     string    `json:"kid,omitempty"`
}

// UnmarshalJSON matches member names exactly. JOSE member names are case
// sensitive, so {"ALG":"HS256"} carries no algorithm.
func (h *Header) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	var header Header
	for name, dst := range map[string]any{
		"alg": &header.Algorithm,
		"typ": &header.Type,
		"kid": &header.KeyID,
	} {
		raw, ok := members[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("header member %q: %w", name, err)
		}
	}

	*h = header
	return nil
}
