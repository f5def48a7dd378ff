package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the single claim bundle carried by both access and refresh tokens.
// Construct it once per issuance; never assemble ad hoc field sets at call sites.
type Claims struct {
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	IsDeleted     bool   `json:"isDeleted"`
	EmailVerified bool   `json:"emailVerified"`
	jwt.RegisteredClaims
}

func Sign(claims Claims, secret []byte, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiresIn))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Verify checks signature and expiry against one secret. Any failure reports
// ok=false; callers cannot tell a bad signature from an expired token.
func Verify(tokenStr string, secret []byte) (*Claims, bool) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, false
	}
	return &claims, true
}
