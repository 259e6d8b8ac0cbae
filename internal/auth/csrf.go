package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

const (
	// CSRFCookieName is the cookie half of the double-submit pair.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName carries the request half for JSON clients.
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFieldName carries the request half for form posts.
	CSRFFieldName = "csrf_token"
)

// CSRFService issues and validates double-submit anti-forgery tokens.
// Tokens are not single-use; re-issuance on every protected form
// render rotates them naturally.
type CSRFService struct {
	TTL    time.Duration
	Secure bool
}

func NewCSRFService(ttl time.Duration, secure bool) *CSRFService {
	return &CSRFService{TTL: ttl, Secure: secure}
}

// Issue generates a 32-byte random token, sets it as an HTTP-only
// SameSite=Lax cookie on the response and returns it for embedding in
// the rendered form or expected request header.
func (s *CSRFService) Issue(w http.ResponseWriter) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

// Validate compares the cookie-resident token against the one supplied
// in the request. False on absence or mismatch; comparison is
// constant-time.
func (s *CSRFService) Validate(cookieToken, suppliedToken string) bool {
	if cookieToken == "" || suppliedToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(suppliedToken)) == 1
}

// TokenFromRequest extracts the supplied token from the header or,
// for form posts, the csrf_token field.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}
	return r.PostFormValue(CSRFFieldName)
}
