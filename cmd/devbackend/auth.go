package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type tokens struct {
	secret []byte
}

func (t tokens) issue(subject, role string) (string, error) {
	now := time.Now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t tokens) parse(raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type claimsKey struct{}

func claimsFrom(ctx context.Context) *claims {
	c, _ := ctx.Value(claimsKey{}).(*claims)
	return c
}

// requireRole accepts only bearer tokens whose role claim is one of roles.
func (t tokens) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeMessage(w, http.StatusUnauthorized, "Missing token")
				return
			}
			c, err := t.parse(raw)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Token expired"
				}
				writeMessage(w, http.StatusUnauthorized, msg)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, c)))
					return
				}
			}
			writeMessage(w, http.StatusForbidden, "Access denied")
		})
	}
}
