// Package auth issues and verifies the credentials of sync clients: HS256
// bearer tokens carrying the account id, bcrypt password hashes, and the
// request context key that carries the verified account id.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "schedsync"

// Claims are the registered claims plus the account the token was minted for.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64 `json:"account_id"`
}

func GenerateToken(accountID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: accountID,
	})
	return token.SignedString(secretKey)
}

// GetAccountIDFromToken verifies tokenString and returns its account id.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification yields common.ErrInvalidToken.
func GetAccountIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID <= 0 {
		return 0, common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
