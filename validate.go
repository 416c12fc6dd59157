package jwt

import (
	"fmt"
	"slices"
	"time"
)

// ClaimRules configures ValidateClaims. Zero fields are not checked.
type ClaimRules struct {
	// Audiences, when non-empty, requires "aud" to contain one of them.
	Audiences []string

	// Issuers, when non-empty, requires "iss" to be one of them.
	Issuers []string

	// ExpiryTime, when set, returns the instant "exp" is checked against.
	ExpiryTime func() time.Time

	// NotBeforeTime, when set, returns the instant "nbf" is checked against.
	NotBeforeTime func() time.Time

	// Leeway is the clock skew tolerated by the time checks.
	Leeway time.Duration
}

// ValidateClaims checks claims against rules and returns nil or a
// *ValidationError describing the first failed rule.
//
// A token is unexpired at t when exp >= t, and valid at t when nbf <= t.
// Both checks require the claim to be present.
func ValidateClaims(claims Claims, rules ClaimRules) error {
	if len(rules.Audiences) > 0 {
		if !intersects(claims.Audience(), rules.Audiences) {
			return NewValidationError(
				ErrorCodeInvalidAudience,
				fmt.Sprintf("audience %v not in %v", claims.Audience(), rules.Audiences),
				nil,
			)
		}
	}

	if len(rules.Issuers) > 0 {
		issuer, ok := claims.Issuer()
		if !ok || !slices.Contains(rules.Issuers, issuer) {
			return NewValidationError(
				ErrorCodeInvalidIssuer,
				fmt.Sprintf("issuer %q not in %v", issuer, rules.Issuers),
				nil,
			)
		}
	}

	if rules.ExpiryTime != nil {
		now := rules.ExpiryTime()
		exp, ok := claims.ExpiresAt()
		if !ok {
			return NewValidationError(ErrorCodeTokenExpired, missingDate(claims, "exp", "token has no expiry"), nil)
		}
		if now.After(exp.Add(rules.Leeway)) {
			return NewValidationError(
				ErrorCodeTokenExpired,
				fmt.Sprintf("token expired at %s", exp.UTC().Format(time.RFC3339)),
				nil,
			)
		}
	}

	if rules.NotBeforeTime != nil {
		now := rules.NotBeforeTime()
		nbf, ok := claims.NotBefore()
		if !ok {
			return NewValidationError(ErrorCodeTokenNotYetValid, missingDate(claims, "nbf", "token has no not-before time"), nil)
		}
		if nbf.After(now.Add(rules.Leeway)) {
			return NewValidationError(
				ErrorCodeTokenNotYetValid,
				fmt.Sprintf("token not valid before %s", nbf.UTC().Format(time.RFC3339)),
				nil,
			)
		}
	}

	return nil
}

// missingDate tells an absent time claim apart from one that is not a
// usable NumericDate.
func missingDate(claims Claims, key, absent string) string {
	if claims.Has(key) {
		return fmt.Sprintf("%q is not a valid NumericDate", key)
	}
	return absent
}

func intersects(values, allowed []string) bool {
	for _, v := range values {
		if slices.Contains(allowed, v) {
			return true
		}
	}
	return false
}
