package http

import (
	"errors"
	"net/http"
	"strings"

	"bookkeeping/internal/services"
)

const sessionCookieName = "bk_session"

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// session returns the caller's bill session, issuing a cookie when a new
// one had to be created.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *services.BillSession {
	var id string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.sessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// limitBody caps how much of a request body handlers will read.
func limitBody(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
}

// isMalformed reports whether err means the body itself was unreadable.
func isMalformed(err error) bool {
	return errors.Is(err, errMalformedBody)
}
