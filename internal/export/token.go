package export

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenScope = "export"

// Claims represents the download-token payload.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueToken signs a short-lived download token for subject. The token lets
// a plain browser download or curl fetch the CSV without carrying the
// session cookie.
func IssueToken(subject, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		Scope: tokenScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ParseToken validates a download token and returns its subject.
func ParseToken(tokenStr, issuer, key string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Scope != tokenScope {
		return "", errors.New("wrong token scope")
	}
	if issuer != "" && claims.Issuer != issuer {
		return "", errors.New("issuer mismatch")
	}
	return claims.Subject, nil
}
