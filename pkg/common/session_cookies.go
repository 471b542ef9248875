package common

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/matst80/slask-catalog/pkg/types"
)

const SessionCookieName = "sid"

func generateSessionId() string {
	return uuid.New().String()
}

func cookieDomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, ".")
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionId,
		Domain:   cookieDomain(r.Host),
		SameSite: http.SameSiteNoneMode,
		HttpOnly: true,
		MaxAge:   7200,
		Path:     "/",
	})
}

// HandleSessionCookie returns the session id from the request cookie,
// issuing a new one when it is missing or malformed.
func HandleSessionCookie(tracking types.Tracking, w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}
	sessionId := generateSessionId()
	if tracking != nil {
		go tracking.TrackSession(sessionId, r)
	}
	setSessionCookie(w, r, sessionId)
	// later handlers in the same request read the cookie back
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionId})
	return sessionId
}
