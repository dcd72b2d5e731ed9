// Package auth mints and verifies the HS256 access tokens that identify the
// submitting user on every RPC.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the owning user's ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// ValidUserID reports whether id can name a user. IDs become a storage key
// segment, so path separators and dot segments are not allowed.
func ValidUserID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	if !ValidUserID(userID) {
		return "", common.ErrInvalidUserID
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken returns common.ErrTokenExpired for an expired token and
// common.ErrInvalidToken for any other verification failure.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || !ValidUserID(claims.UserID) {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
