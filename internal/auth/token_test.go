package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc, err := NewTokenService("secret", "restock-forecast", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("cafe-1")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "cafe-1", claims.Workspace)
	assert.Equal(t, "cafe-1", claims.Subject)
	assert.Equal(t, "restock-forecast", claims.Issuer)
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	issuer, err := NewTokenService("secret-a", "", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b", "", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("cafe-1")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	a, err := NewTokenService("secret", "issuer-a", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenService("secret", "issuer-b", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("cafe-1")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	svc, err := NewTokenService("secret", "", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.Issue("cafe-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService("", "", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	svc, err := NewTokenService("secret", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, svc.ttl)

	_, err = svc.Issue("")
	assert.Error(t, err)
}
