package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName is the cookie holding the visitor session.
	SessionName = "plug_session"
	// VisitorContextKey is where Visitor stores the visitor ID in echo.Context.
	VisitorContextKey = "visitor_id"

	sessionVisitorKey = "visitor_id"
)

// Visitor assigns every browser a stable anonymous ID kept in the session
// cookie. It must run after the session middleware.
func Visitor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(SessionName, c)
		if sess == nil {
			return err
		}
		if err != nil {
			// A cookie signed with an old secret fails to decode; start over.
			slog.Debug("Discarding unreadable session", "error", err)
		}

		id, _ := sess.Values[sessionVisitorKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[sessionVisitorKey] = id
			sess.Options = &sessions.Options{
				Path:     "/",
				MaxAge:   86400 * 7, // 7 days
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return err
			}
		}

		c.Set(VisitorContextKey, id)
		return next(c)
	}
}

// VisitorID returns the ID set by Visitor, or "" when the middleware did not run.
func VisitorID(c echo.Context) string {
	id, _ := c.Get(VisitorContextKey).(string)
	return id
}
