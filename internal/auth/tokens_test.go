package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(Config{
		UserPassword:  "everyone",
		AdminPassword: "organizer",
		SigningSecret: "test-secret",
		UserTokenTTL:  7 * 24 * time.Hour,
		AdminTokenTTL: 24 * time.Hour,
	})
}

func TestLoginUser(t *testing.T) {
	svc := newTestService()

	token, err := svc.LoginUser("everyone")
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyUser(token.Value))
	assert.ErrorIs(t, svc.VerifyAdmin(token.Value), ErrInvalidToken)

	_, err = svc.LoginUser("nope")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestLoginUserAcceptsAdminPassword(t *testing.T) {
	svc := newTestService()

	token, err := svc.LoginUser("organizer")
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyUser(token.Value))
}

func TestLoginAdmin(t *testing.T) {
	svc := newTestService()

	token, err := svc.LoginAdmin("organizer")
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyAdmin(token.Value))
	assert.NoError(t, svc.VerifyUser(token.Value), "admin token should pass user checks")

	_, err = svc.LoginAdmin("everyone")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.LoginUser("everyone")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	assert.ErrorIs(t, svc.VerifyUser(token.Value), ErrInvalidToken)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	svc := newTestService()

	other := NewService(Config{
		UserPassword:  "everyone",
		AdminPassword: "organizer",
		SigningSecret: "different-secret",
		UserTokenTTL:  time.Hour,
		AdminTokenTTL: time.Hour,
	})
	token, err := other.LoginAdmin("organizer")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyAdmin(token.Value), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyUser("not-a-jwt"), ErrInvalidToken)
}

func TestEmptyPasswordNeverMatches(t *testing.T) {
	svc := NewService(Config{
		SigningSecret: "test-secret",
		UserTokenTTL:  time.Hour,
		AdminTokenTTL: time.Hour,
	})

	_, err := svc.LoginUser("")
	assert.ErrorIs(t, err, ErrWrongPassword)
}
