package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFService_Issue(t *testing.T) {
	svc := NewCSRFService(time.Hour, false)
	rec := httptest.NewRecorder()

	token, err := svc.Issue(rec)
	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 bytes hex-encoded

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CSRFCookieName, cookie.Name)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.False(t, cookie.Secure)
}

func TestCSRFService_Issue_SecureFlag(t *testing.T) {
	svc := NewCSRFService(time.Hour, true)
	rec := httptest.NewRecorder()

	_, err := svc.Issue(rec)
	require.NoError(t, err)
	assert.True(t, rec.Result().Cookies()[0].Secure)
}

func TestCSRFService_Validate(t *testing.T) {
	svc := NewCSRFService(time.Hour, false)

	tests := []struct {
		name     string
		cookie   string
		supplied string
		want     bool
	}{
		{name: "matching tokens validate", cookie: "abc123", supplied: "abc123", want: true},
		{name: "mismatched tokens fail", cookie: "abc123", supplied: "abc124", want: false},
		{name: "missing cookie token fails", cookie: "", supplied: "abc123", want: false},
		{name: "missing supplied token fails", cookie: "abc123", supplied: "", want: false},
		{name: "both missing fails", cookie: "", supplied: "", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, svc.Validate(test.cookie, test.supplied))
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("header takes precedence", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set(CSRFHeaderName, "from-header")
		assert.Equal(t, "from-header", TokenFromRequest(r))
	})

	t.Run("falls back to form field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.PostForm = map[string][]string{CSRFFieldName: {"from-form"}}
		assert.Equal(t, "from-form", TokenFromRequest(r))
	})

	t.Run("empty when absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		assert.Empty(t, TokenFromRequest(r))
	})
}
