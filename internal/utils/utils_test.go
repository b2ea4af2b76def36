package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	token, expiresAt, err := GenerateJWT("user-1", "a@example.com", "admin", "secret", time.Hour, "holistic-money")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ParseAndValidateJWT(token, "secret", "holistic-money")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, _, err := GenerateJWT("user-1", "a@example.com", "user", "secret", time.Hour, "")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "other-secret", "")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseJWT_Expired(t *testing.T) {
	token, _, err := GenerateJWT("user-1", "a@example.com", "user", "secret", -time.Minute, "")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseJWT_WrongIssuer(t *testing.T) {
	token, _, err := GenerateJWT("user-1", "a@example.com", "user", "secret", time.Hour, "someone-else")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "holistic-money")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestParseJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret", "")
	assert.Error(t, err)
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(4)
	require.NoError(t, err)
	assert.Len(t, s, 8)

	_, err = RandomHex(0)
	assert.Error(t, err)
}

func TestWriteCredentialFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "creds")

	path, err := WriteCredentialFile(dir, "ca.pem", "-----BEGIN CERTIFICATE-----")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ca.pem"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-----BEGIN CERTIFICATE-----", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	path, err = WriteCredentialFile(dir, "empty.json", "")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestPosthogWrapper_DisabledIsNoop(t *testing.T) {
	var w *PosthogClientWrapper
	assert.False(t, w.IsInitialized())
	w.Enqueue("u", "evt", nil)
	w.Close()
}
