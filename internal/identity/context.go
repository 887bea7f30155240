// Package identity reads the authenticated user out of a request.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalsKey is where the JWT middleware stores the parsed *jwt.Token.
const LocalsKey = "user"

var ErrNoIdentity = errors.New("no authenticated user")

// Claims returns the JWT claims attached to the request, if any.
func Claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := Claims(c)
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}
	return subject(claims)
}

// OptionalUserID is GetUserID for routes that also serve anonymous callers.
func OptionalUserID(c *fiber.Ctx) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// Email returns the email claim, or "" when absent.
func Email(c *fiber.Ctx) string {
	claims, ok := Claims(c)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// ParseToken validates an HS256 access token and returns it with its subject.
func ParseToken(secret, raw string) (*jwt.Token, uuid.UUID, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return nil, uuid.Nil, ErrNoIdentity
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, uuid.Nil, errors.New("invalid claims")
	}
	id, err := subject(claims)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return token, id, nil
}

func subject(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}
