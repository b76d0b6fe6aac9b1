// Package session assigns anonymous visitors a stable identity via an
// opaque cookie, so their comment reactions survive page loads without an
// account.
package session

import (
	"time"

	"inkwell/internal/reactions"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TTL is how long an anonymous session cookie lives. It matches the
// retention of the session reaction state.
const TTL = 30 * 24 * time.Hour

// Manager reads and lazily establishes session cookies.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cookieName string, secure bool) *Manager {
	return &Manager{cookieName: cookieName, secure: secure}
}

// Identity resolves the acting identity for a request. Authenticated
// users win; otherwise the session cookie, if present, identifies the
// visitor. With neither, the returned identity is anonymous with an empty
// key.
func (m *Manager) Identity(c *fiber.Ctx, userID uint) reactions.Identity {
	if userID != 0 {
		return reactions.Identity{UserID: userID}
	}
	return reactions.Identity{SessionKey: c.Cookies(m.cookieName)}
}

// Establish returns the request's session key, setting a fresh cookie
// when none exists yet. Called on the first write that needs an anonymous
// identity; pure reads never create sessions.
func (m *Manager) Establish(c *fiber.Ctx) string {
	if key := c.Cookies(m.cookieName); key != "" {
		return key
	}
	key := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    key,
		Expires:  time.Now().Add(TTL),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return key
}
