// internal/httpserver/session.go
//
// Browser sessions for Grid Chase.
// A session is a random ID carried in an HttpOnly cookie as an HS256 JWT
// (subject = session ID), so clients cannot pick another player's session by
// guessing IDs. Missing, expired or tampered cookies get a fresh session.

package httpserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aswathmantle-create/game/internal/config"
)

const sessionTTL = 180 * 24 * time.Hour

type sessions struct {
	secret []byte
	cookie string
	secure bool
	now    func() time.Time
}

func newSessions(cfg config.Config) *sessions {
	return &sessions{
		secret: []byte(cfg.SessionSecret),
		cookie: cfg.SessionCookie,
		secure: cfg.Production(),
		now:    time.Now,
	}
}

// ensure returns the caller's session ID, issuing a new cookie when needed.
func (s *sessions) ensure(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookie); err == nil && c.Value != "" {
		if id, err := s.parse(c.Value); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	tok, exp, err := s.sign(id)
	if err != nil {
		// Unsigned sessions still work for this request; the next one starts over.
		return id
	}
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return id
}

// sign creates the cookie token for a session ID.
func (s *sessions) sign(id string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// parse validates a cookie token and returns its session ID.
func (s *sessions) parse(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
