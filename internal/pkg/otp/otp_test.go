package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDecimalDigits(t *testing.T) {
	code, ch, err := Generate(10 * time.Minute)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be decimal: %q", code)
	}
	assert.Equal(t, Hash(code), ch.Hash)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), ch.ExpiresAt, 2*time.Second)
}

func TestGenerate_PlaintextNeverEqualsStoredForm(t *testing.T) {
	code, ch, err := Generate(time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, code, ch.Hash)
	assert.Len(t, ch.Hash, 64) // hex sha256
}

func TestValid_CorrectCodeWithinWindow(t *testing.T) {
	now := time.Now()
	assert.True(t, Valid(Hash("123456"), now.Add(time.Minute), "123456", now))
}

func TestValid_WrongCode(t *testing.T) {
	now := time.Now()
	assert.False(t, Valid(Hash("123456"), now.Add(time.Minute), "654321", now))
}

func TestValid_ExpiredCode(t *testing.T) {
	now := time.Now()
	assert.False(t, Valid(Hash("123456"), now.Add(-time.Second), "123456", now))
}

func TestValid_ExpiryBoundaryIsExclusive(t *testing.T) {
	now := time.Now()
	assert.False(t, Valid(Hash("123456"), now, "123456", now))
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash("000000"), Hash("000000"))
	assert.NotEqual(t, Hash("000000"), Hash("000001"))
}
