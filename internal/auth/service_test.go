package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("arise")
	require.NoError(t, err)
	require.NotEqual(t, "arise", hash)

	require.True(t, h.Verify(hash, "arise"))
	require.False(t, h.Verify(hash, "wrong"))
}

func TestTokenIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "test-secret", Issuer: "sologym", TokenTTL: time.Hour})

	token, err := issuer.Issue("hunter-1")
	require.NoError(t, err)

	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "hunter-1", sub)
}

func TestTokenParseRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "test-secret", Issuer: "sologym", TokenTTL: time.Hour})

	_, err := issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrBadToken)
}

func TestTokenParseRejectsWrongSecret(t *testing.T) {
	a := NewTokenIssuer(Config{Secret: "secret-a", Issuer: "sologym", TokenTTL: time.Hour})
	b := NewTokenIssuer(Config{Secret: "secret-b", Issuer: "sologym", TokenTTL: time.Hour})

	token, err := a.Issue("hunter-1")
	require.NoError(t, err)

	_, err = b.Parse(token)
	require.ErrorIs(t, err, ErrBadToken)
}

func TestTokenParseRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "test-secret", Issuer: "sologym", TokenTTL: -time.Minute})

	token, err := issuer.Issue("hunter-1")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	require.ErrorIs(t, err, ErrBadToken)
}

func TestConfigDefaults(t *testing.T) {
	cfg := ConfigFromEnv()
	require.NotEmpty(t, cfg.Secret)
	require.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
}
