package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, Verify("s3cret-pass", hash))
	require.False(t, Verify("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	require.False(t, ValidatePassword("abc"))
	require.True(t, ValidatePassword("abcdef"))
}
