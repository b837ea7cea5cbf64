package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParseRoundtrip(t *testing.T) {
	token, err := Sign("user-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSignWithSessionID(t *testing.T) {
	token, err := SignWithOptions("user-1", time.Hour, SignOptions{SessionID: "sid-42"})
	require.NoError(t, err)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-42", claims.SessionID)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not.a.token")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := Sign("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	SetSecret("secret-a")
	token, err := Sign("user-1", time.Hour)
	require.NoError(t, err)

	SetSecret("secret-b")
	defer SetSecret("secret-a")

	_, err = Parse(token)
	assert.Error(t, err)
}

func TestSetSecretIgnoresEmpty(t *testing.T) {
	SetSecret("known-secret")
	token, err := Sign("user-1", time.Hour)
	require.NoError(t, err)

	SetSecret("")
	_, err = Parse(token)
	assert.NoError(t, err, "empty secret must not clobber the configured one")
}
