package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/tokengrid/internal/logging"
)

type sessionKey struct{}

// withSessionID stores the session ID on the request context.
func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// sessionID returns the session ID set by withSession, or "".
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// withSession resolves the session cookie, starting a new session when the
// cookie is missing or expired, and puts the ID on the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			current = c.Value
		}

		id, created, err := s.sessions.Ensure(current)
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}

		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Security.SecureCookies,
				SameSite: http.SameSiteStrictMode,
			})
			logging.FromContext(r.Context()).Debug("session started", "session", id)
		}

		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
	})
}
