package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/civicdesk/notification-service/internal/models"
)

// Principal is the authenticated identity attached to each request. It is
// the "current recipient" for read-state operations.
type Principal struct {
	ID   string
	Role models.ChatRole
	Kind models.RecipientKind
}

const principalKey = "principal"

// JWTAuth verifies the bearer token and stores the principal in locals.
// Identity issuance belongs to the surrounding system; this layer only
// verifies and extracts.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		p, err := ParseToken(secret, parts[1])
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// ParseToken validates an HMAC-signed token and extracts the principal
// claims ("sub", "role", "kind").
func ParseToken(secret, tokenStr string) (Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, errors.New("missing subject")
	}
	role, _ := claims["role"].(string)
	kind, _ := claims["kind"].(string)
	return Principal{
		ID:   sub,
		Role: models.ChatRole(role),
		Kind: models.RecipientKind(kind),
	}, nil
}

// PrincipalFrom retrieves the principal set by JWTAuth.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}
