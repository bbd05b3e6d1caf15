package authentication_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nasermirzaei89/murmur/authentication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := authentication.NewTokenManager(nil, time.Hour)
	require.ErrorIs(t, err, authentication.ErrEmptyTokenSecret)
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	t.Parallel()

	tm, err := authentication.NewTokenManager([]byte("secret"), time.Hour)
	require.NoError(t, err)

	session := &authentication.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(24 * time.Hour)}

	token, err := tm.Issue(session)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "s1", claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_ExpiresWithSession(t *testing.T) {
	t.Parallel()

	tm, err := authentication.NewTokenManager([]byte("secret"), time.Hour)
	require.NoError(t, err)

	sessionExpiry := time.Now().Add(10 * time.Minute)

	token, err := tm.Issue(&authentication.Session{ID: "s1", UserID: "u1", ExpiresAt: sessionExpiry})
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.WithinDuration(t, sessionExpiry, claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_Parse_Invalid(t *testing.T) {
	t.Parallel()

	tm, err := authentication.NewTokenManager([]byte("secret"), time.Hour)
	require.NoError(t, err)

	other, err := authentication.NewTokenManager([]byte("other-secret"), time.Hour)
	require.NoError(t, err)

	session := &authentication.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}

	foreign, err := other.Issue(session)
	require.NoError(t, err)

	expired, err := tm.Issue(&authentication.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &authentication.AccessClaims{
		SessionID:        "s1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &authentication.AccessClaims{
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSession, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &authentication.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "foreign signature", token: foreign},
		{name: "expired", token: expired},
		{name: "missing expiry", token: noExpiry},
		{name: "other method", token: hs512},
		{name: "missing session", token: noSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tm.Parse(tt.token)
			require.ErrorIs(t, err, authentication.ErrInvalidToken)
		})
	}
}
