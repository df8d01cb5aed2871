package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret")
	token, err := s.Sign(42, "admin")
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestSignerRejects(t *testing.T) {
	s := NewSigner("secret")
	token, err := s.Sign(7, "user")
	require.NoError(t, err)

	_, err = NewSigner("other").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewSigner("secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * tokenTTL) }
	old, err := expired.Sign(7, "user")
	require.NoError(t, err)
	_, err = s.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}

func TestNewCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])
	}
}

func TestThrottle(t *testing.T) {
	th := NewThrottle(time.Hour, 2)
	assert.True(t, th.Allow("a@example.com"))
	assert.True(t, th.Allow("a@example.com"))
	assert.False(t, th.Allow("a@example.com"))
	assert.True(t, th.Allow("b@example.com"))

	var nilThrottle *Throttle
	assert.True(t, nilThrottle.Allow("x"))
}
