package main

import (
	"testing"
	"time"

	"github.com/ordermill/storefront/internal/auth/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEphemeralSecret_AcceptedByJWTService(t *testing.T) {
	secret := ephemeralSecret()
	assert.GreaterOrEqual(t, len(secret), 32)

	svc, err := jwt.NewService(jwt.Config{SecretKey: secret, Duration: 7 * 24 * time.Hour})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestEphemeralSecret_Unique(t *testing.T) {
	assert.NotEqual(t, ephemeralSecret(), ephemeralSecret())
}
