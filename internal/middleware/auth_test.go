package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/notification-service/internal/models"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{
		"sub":  "A1",
		"role": "Admin",
		"kind": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	p, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "A1", p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.Equal(t, models.KindAdmin, p.Kind)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{"sub": "A1"})
	_, err := ParseToken("other", token)
	assert.Error(t, err)
}

func TestParseTokenMissingSubject(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{"role": "Admin"})
	_, err := ParseToken("secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{
		"sub": "A1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err := ParseToken("secret", token)
	assert.Error(t, err)
}
