package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_Roundtrip(t *testing.T) {
	m := NewManager("test-secret", "civicvoice-backend", time.Hour)

	token, err := m.GenerateToken("user-1", "jane@example.com", "Jane", "RESIDENT")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "RESIDENT", claims.Role)
	assert.Equal(t, "civicvoice-backend", claims.Issuer)
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "civicvoice-backend", -time.Minute)

	token, err := m.GenerateToken("user-1", "jane@example.com", "", "RESIDENT")
	assert.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_WrongSecret(t *testing.T) {
	m := NewManager("test-secret", "civicvoice-backend", time.Hour)
	other := NewManager("different-secret", "civicvoice-backend", time.Hour)

	token, err := m.GenerateToken("user-1", "jane@example.com", "", "RESIDENT")
	assert.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	m := NewManager("test-secret", "civicvoice-backend", time.Hour)

	_, err := m.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
