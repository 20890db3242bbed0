package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LegacyClaims represents HMAC-signed session token claims, used when the
// auth provider signs tokens with a shared secret instead of publishing a
// key set.
type LegacyClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateLegacyToken parses and verifies a shared-secret session token.
func ValidateLegacyToken(tokenString, secret string) (*LegacyClaims, error) {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
	token, err := jwt.ParseWithClaims(tokenString, &LegacyClaims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*LegacyClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// SignLegacyToken mints an HMAC-signed session token. Used by tests and
// development setups without a reachable auth provider.
func SignLegacyToken(userID, email, secret string, ttl time.Duration) (string, error) {
	claims := &LegacyClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
