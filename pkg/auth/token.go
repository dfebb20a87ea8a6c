package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSubject is returned when a token's subject is not a user id
var ErrInvalidSubject = errors.New("token subject is not a valid user id")

// Verifier validates RS256 bearer tokens issued elsewhere. It never signs.
type Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// ParsePublicKey decodes a PEM encoded PKIX RSA public key
func ParsePublicKey(publicKeyPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("failed to parse public key PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return rsaPub, nil
}

// NewVerifier creates a Verifier from a PEM public key.
// An empty issuer accepts tokens from any issuer.
func NewVerifier(publicKeyPEM []byte, issuer string) (*Verifier, error) {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	return &Verifier{publicKey: pub, issuer: issuer}, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
// The subject must parse as a UUID: it is the bidder id.
func (v *Verifier) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidSubject
	}
	return claims, nil
}
