package jwt

import (
	"crypto"
	// Digest implementations referenced by Algorithm.Hash.
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Algorithm is a JWS signature algorithm identifier as carried in the "alg"
// header member.
type Algorithm string

// Signature algorithms
const (
	HS256 = Algorithm("HS256") // HMAC using SHA-256
	HS384 = Algorithm("HS384") // HMAC using SHA-384
	HS512 = Algorithm("HS512") // HMAC using SHA-512
	RS256 = Algorithm("RS256") // RSASSA-PKCS-v1.5 using SHA-256
	RS384 = Algorithm("RS384") // RSASSA-PKCS-v1.5 using SHA-384
	RS512 = Algorithm("RS512") // RSASSA-PKCS-v1.5 using SHA-512
	PS256 = Algorithm("PS256") // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 = Algorithm("PS384") // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 = Algorithm("PS512") // RSASSA-PSS using SHA512 and MGF1-SHA512
	ES256 = Algorithm("ES256") // ECDSA using P-256 and SHA-256
	ES384 = Algorithm("ES384") // ECDSA using P-384 and SHA-384
	ES512 = Algorithm("ES512") // ECDSA using P-521 and SHA-512
)

// Family is the signature scheme shared by a group of algorithms.
type Family string

// Algorithm families
const (
	FamilyHMAC  = Family("HS")
	FamilyPKCS1 = Family("RS")
	FamilyPSS   = Family("PS")
	FamilyECDSA = Family("ES")
)

type algorithmInfo struct {
	family Family
	hash   crypto.Hash
}

var supportedAlgorithms = map[Algorithm]algorithmInfo{
	HS256: {FamilyHMAC, crypto.SHA256},
	HS384: {FamilyHMAC, crypto.SHA384},
	HS512: {FamilyHMAC, crypto.SHA512},
	RS256: {FamilyPKCS1, crypto.SHA256},
	RS384: {FamilyPKCS1, crypto.SHA384},
	RS512: {FamilyPKCS1, crypto.SHA512},
	PS256: {FamilyPSS, crypto.SHA256},
	PS384: {FamilyPSS, crypto.SHA384},
	PS512: {FamilyPSS, crypto.SHA512},
	ES256: {FamilyECDSA, crypto.SHA256},
	ES384: {FamilyECDSA, crypto.SHA384},
	ES512: {FamilyECDSA, crypto.SHA512},
}

// Algorithms returns every supported algorithm, grouped by family.
func Algorithms() []Algorithm {
	return []Algorithm{
		HS256, HS384, HS512,
		RS256, RS384, RS512,
		PS256, PS384, PS512,
		ES256, ES384, ES512,
	}
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	_, ok := supportedAlgorithms[a]
	return ok
}

// Family returns the signature scheme of a, or "" if a is not supported.
func (a Algorithm) Family() Family {
	return supportedAlgorithms[a].family
}

// Hash returns the digest bound to a. It returns 0 for unsupported algorithms.
func (a Algorithm) Hash() crypto.Hash {
	return supportedAlgorithms[a].hash
}

func (a Algorithm) String() string {
	return string(a)
}

// Algorithms returns the supported algorithms belonging to f.
func (f Family) Algorithms() []Algorithm {
	var out []Algorithm
	for _, alg := range Algorithms() {
		if alg.Family() == f {
			out = append(out, alg)
		}
	}
	return out
}
