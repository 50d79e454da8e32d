// README: HS256 session tokens for local development.
package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"privatehire/internal/types"
)

var ErrInvalidToken = errors.New("invalid session token")

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) VerifyIDToken(_ context.Context, idToken string) (*types.Session, error) {
	token, err := jwt.Parse(idToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return sessionFromClaims(types.ID(sub), claims), nil
}

// SignDevToken issues a token NewJWTVerifier accepts. Used by tests and local tooling.
func SignDevToken(secret string, sess types.Session, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": string(sess.UID),
		"exp": time.Now().Add(ttl).Unix(),
	}
	if sess.DisplayName != "" {
		claims["name"] = sess.DisplayName
	}
	if sess.Email != "" {
		claims["email"] = sess.Email
	}
	if sess.Role != "" {
		claims["role"] = sess.Role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
