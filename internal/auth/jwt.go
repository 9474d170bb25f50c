package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-search-backend/internal/apperr"
)

// JWTResolver verifies platform access tokens locally with the project's JWT secret.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret []byte) *JWTResolver {
	return &JWTResolver{secret: secret}
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (uuid.UUID, error) {
	uid, err := ParseToken(r.secret, token)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindAuth, MsgInvalidAuthorization, err)
	}
	return uid, nil
}

var ErrNoSubject = errors.New("token has no user subject")

func ParseToken(secret []byte, tokenString string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrNoSubject
	}
	return uid, nil
}

// GenerateToken signs an access token in the platform's shape. Used by tests and local tooling.
func GenerateToken(secret []byte, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": "authenticated",
		"aud":  "authenticated",
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}
