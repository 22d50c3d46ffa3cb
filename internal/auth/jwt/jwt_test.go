package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: testSecret, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestService_GenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: 7 * 24 * time.Hour})
	assert.NoError(t, err)

	tok, err := s.GenerateToken(42, "alice@example.com")
	assert.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	assert.NoError(t, err)
	if assert.NotNil(t, claims) {
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "42", claims.Subject)
	}
}

func TestService_RejectsForeignSecret(t *testing.T) {
	s1, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	assert.NoError(t, err)
	s2, err := NewService(Config{SecretKey: "ffffffffffffffffffffffffffffffff", Duration: time.Hour})
	assert.NoError(t, err)

	tok, err := s1.GenerateToken(1, "bob@example.com")
	assert.NoError(t, err)

	claims, err := s2.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_InvalidToken(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	assert.NoError(t, err)

	claims, err := s.ValidateToken("not-a-token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}
