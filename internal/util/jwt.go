package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims issued by the auth provider. The
// subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var (
	hmacMethods  = []string{"HS256", "HS384", "HS512"}
	rsaMethods   = []string{"RS256", "RS384", "RS512"}
	ecdsaMethods = []string{"ES256", "ES384", "ES512"}
)

// ValidateJWT verifies a bearer token. keyMaterial is the shared secret for
// HMAC tokens or a PEM public key for RSA and ECDSA tokens. A PEM key only
// ever verifies asymmetric tokens.
func ValidateJWT(tokenString, keyMaterial string) (*Claims, error) {
	key, methods, err := verificationKey(keyMaterial)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods(methods))
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// verificationKey decides the key type from keyMaterial alone and returns
// the signing methods allowed for it.
func verificationKey(keyMaterial string) (interface{}, []string, error) {
	block, _ := pem.Decode([]byte(keyMaterial))
	if block == nil {
		if keyMaterial == "" {
			return nil, nil, errors.New("empty JWT secret")
		}
		return []byte(keyMaterial), hmacMethods, nil
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return k, rsaMethods, nil
	case *ecdsa.PublicKey:
		return k, ecdsaMethods, nil
	default:
		return nil, nil, fmt.Errorf("unsupported public key type %T", pub)
	}
}
