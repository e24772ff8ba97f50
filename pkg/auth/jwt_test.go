package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, c *clock) JWTService {
	t.Helper()
	svc, err := NewJWTService(Config{Secret: "test-secret-0123456789abcdef", Now: c.now})
	require.NoError(t, err)
	return svc
}

func TestRoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	svc := newService(t, c)

	for _, id := range []string{"a@x.com", "admin", "dr.lee@clinic.test"} {
		token, expiresAt, err := svc.Issue(id)
		require.NoError(t, err)
		assert.Equal(t, c.t.Add(DefaultTokenTTL), expiresAt)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestExpiry(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	svc := newService(t, c)

	token, _, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	c.t = c.t.Add(DefaultTokenTTL - time.Minute)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsBadTokens(t *testing.T) {
	c := &clock{t: time.Now()}
	svc := newService(t, c)

	token, _, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	other, err := NewJWTService(Config{Secret: "another-secret", Now: c.now})
	require.NoError(t, err)
	foreign, _, err := other.Issue("a@x.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, bad := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"tampered":  tampered,
		"foreign":   foreign,
		"alg none":  unsigned,
		"two parts": parts[0] + "." + parts[1],
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := svc.Verify(bad)
				assert.ErrorIs(t, err, ErrInvalidToken)
			})
		})
	}
}

func TestRequiresSecret(t *testing.T) {
	_, err := NewJWTService(Config{})
	assert.Error(t, err)
}
