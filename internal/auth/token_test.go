package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	userID := uuid.New()
	sessionID := uuid.New()

	raw, err := codec.Sign(userID, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	gotUser, gotSession, err := codec.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, sessionID, gotSession)
}

func TestTokenCodec_Parse_Rejections(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	expired, err := codec.Sign(uuid.New(), uuid.New(), -time.Minute)
	require.NoError(t, err)

	otherCodec := NewTokenCodec([]byte("another-secret-that-is-32-bytes!"))
	foreign, err := otherCodec.Sign(uuid.New(), uuid.New(), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty token", raw: ""},
		{name: "garbage token", raw: "not.a.jwt"},
		{name: "expired token", raw: expired},
		{name: "token signed with a different secret", raw: foreign},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := codec.Parse(test.raw)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	second, err := GenerateToken(32)
	require.NoError(t, err)

	// 32 bytes base64url-encoded without padding is 43 characters.
	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}
