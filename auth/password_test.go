package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordScheme(t *testing.T) {
	s, err := NewPasswordScheme("")
	require.NoError(t, err)
	assert.IsType(t, PlainScheme{}, s)

	s, err = NewPasswordScheme(SchemeBcrypt)
	require.NoError(t, err)
	assert.IsType(t, BcryptScheme{}, s)

	_, err = NewPasswordScheme("md5")
	assert.Error(t, err)
}

func TestPlainScheme(t *testing.T) {
	var s PlainScheme
	stored, err := s.Hash("pw")
	require.NoError(t, err)
	assert.Equal(t, "pw", stored)
	assert.True(t, s.Verify(stored, "pw"))
	assert.False(t, s.Verify(stored, "pW"))
	assert.False(t, s.Verify(stored, "pw "))
	assert.False(t, s.Verify(stored, ""))
}

func TestBcryptScheme(t *testing.T) {
	s := BcryptScheme{Cost: 4}
	stored, err := s.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored)
	assert.True(t, s.Verify(stored, "pw"))
	assert.False(t, s.Verify(stored, "other"))
	assert.False(t, s.Verify("not-a-hash", "pw"))
}
