package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "ember"

type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), ttl: 7 * 24 * time.Hour}
}

func (j *JWT) Sign(userID uint64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": issuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) (uint64, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !t.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	sub, ok := claims["sub"]
	if !ok {
		return 0, errors.New("missing sub")
	}

	// jwt MapClaims numbers are float64
	idf, ok := sub.(float64)
	if !ok {
		return 0, errors.New("invalid sub type")
	}
	return uint64(idf), nil
}
