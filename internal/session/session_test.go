package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "inkwell_session"

func TestIdentity(t *testing.T) {
	t.Parallel()
	m := NewManager(testCookie, false)
	app := fiber.New()

	app.Get("/whoami", func(c *fiber.Ctx) error {
		userID := uint(c.QueryInt("user", 0))
		ident := m.Identity(c, userID)
		return c.JSON(fiber.Map{
			"user_id":     ident.UserID,
			"session_key": ident.SessionKey,
			"anonymous":   ident.Anonymous(),
		})
	})

	t.Run("authenticated user wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami?user=42", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "abc"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cookie names the anonymous visitor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "visitor-key"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestEstablish(t *testing.T) {
	t.Parallel()
	m := NewManager(testCookie, false)
	app := fiber.New()

	app.Post("/touch", func(c *fiber.Ctx) error {
		key := m.Establish(c)
		return c.JSON(fiber.Map{"key": key})
	})

	t.Run("first call sets a cookie", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/touch", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		var set *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == testCookie {
				set = c
			}
		}
		require.NotNil(t, set)
		assert.NotEmpty(t, set.Value)
		assert.True(t, set.HttpOnly)
	})

	t.Run("existing cookie is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/touch", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "existing-key"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		for _, c := range resp.Cookies() {
			assert.NotEqual(t, testCookie, c.Name, "no new cookie expected")
		}
	})
}
