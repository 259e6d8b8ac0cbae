package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	hasher := NewArgon2Hasher()

	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{name: "correct password verifies", password: "SecurePass123!", attempt: "SecurePass123!", want: true},
		{name: "wrong password fails", password: "SecurePass123!", attempt: "securepass123!", want: false},
		{name: "empty attempt fails", password: "SecurePass123!", attempt: "", want: false},
		{name: "close match gets no partial credit", password: "SecurePass123!", attempt: "SecurePass123", want: false},
		{name: "unicode password round-trips", password: "パスワード12345", attempt: "パスワード12345", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encoded, err := hasher.Hash(test.password)
			require.NoError(t, err)

			ok, err := hasher.Verify(test.attempt, encoded)
			require.NoError(t, err)
			assert.Equal(t, test.want, ok)
		})
	}
}

func TestArgon2Hasher_EncodingIsSelfDescribing(t *testing.T) {
	hasher := NewArgon2Hasher()

	encoded, err := hasher.Hash("hello world")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	// A hasher with different parameters must still verify hashes
	// produced under the old ones.
	other := &Argon2Hasher{Memory: 32 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	ok, err := other.Verify("hello world", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	hasher := NewArgon2Hasher()

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2Hasher_Verify_RejectsMalformedHash(t *testing.T) {
	hasher := NewArgon2Hasher()

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty string", encoded: ""},
		{name: "not enough parts", encoded: "$argon2id$v=19$m=65536"},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad salt encoding", encoded: "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := hasher.Verify("whatever", test.encoded)
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}
