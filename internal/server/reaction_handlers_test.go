package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("response did not set cookie %q", name)
	return nil
}

func TestLikeComment_AnonymousSessionFlow(t *testing.T) {
	t.Parallel()
	s, db := setupTestServer(t)
	author := seedUser(t, db, "react-author", false)
	post := seedPost(t, db, author.ID, true)
	comment := seedComment(t, db, post.ID, true)

	app := fiber.New()
	registerAs(app, http.MethodPost, "/comments/:id/like", 0, s.LikeComment)
	registerAs(app, http.MethodPost, "/comments/:id/dislike", 0, s.DislikeComment)

	path := fmt.Sprintf("/comments/%d/like", comment.ID)

	// First like establishes a session and counts.
	req := httptest.NewRequest(http.MethodPost, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp, s.config.SessionCookieName)
	require.NotEmpty(t, cookie.Value)

	var liked models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&liked))
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, "like", liked.MyReaction)

	// Repeating the like from the same session changes nothing.
	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var repeated models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&repeated))
	assert.Equal(t, 1, repeated.Likes)
	assert.Equal(t, "like", repeated.MyReaction)

	// A different visitor gets their own session and their like counts.
	req = httptest.NewRequest(http.MethodPost, path, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	other := sessionCookie(t, resp, s.config.SessionCookieName)
	assert.NotEqual(t, cookie.Value, other.Value)

	var second models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, 2, second.Likes)

	// Switching the first session to a dislike moves its vote across.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/comments/%d/dislike", comment.ID), nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var switched models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&switched))
	assert.Equal(t, 1, switched.Likes)
	assert.Equal(t, 1, switched.Dislikes)
	assert.Equal(t, "dislike", switched.MyReaction)
}

func TestReactHandler_UserSwitchesReaction(t *testing.T) {
	t.Parallel()
	s, db := setupTestServer(t)
	author := seedUser(t, db, "switch-author", false)
	reader := seedUser(t, db, "switch-reader", false)
	post := seedPost(t, db, author.ID, true)
	comment := seedComment(t, db, post.ID, true)

	app := fiber.New()
	registerAs(app, http.MethodPost, "/comments/:id/like", reader.ID, s.LikeComment)
	registerAs(app, http.MethodPost, "/comments/:id/dislike", reader.ID, s.DislikeComment)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/comments/%d/like", comment.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/comments/%d/dislike", comment.ID), nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 1, got.Dislikes)
	assert.Equal(t, "dislike", got.MyReaction)
}

func TestReactHandler_PendingCommentHidden(t *testing.T) {
	t.Parallel()
	s, db := setupTestServer(t)
	author := seedUser(t, db, "pending-author", false)
	reader := seedUser(t, db, "pending-reader", false)
	post := seedPost(t, db, author.ID, true)
	pending := seedComment(t, db, post.ID, false)

	app := fiber.New()
	registerAs(app, http.MethodPost, "/comments/:id/like", reader.ID, s.LikeComment)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/comments/%d/like", pending.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReactHandler_ThreadView(t *testing.T) {
	t.Parallel()
	s, db := setupTestServer(t)
	author := seedUser(t, db, "view-author", false)
	reader := seedUser(t, db, "view-reader", false)
	post := seedPost(t, db, author.ID, true)
	comment := seedComment(t, db, post.ID, true)
	seedComment(t, db, post.ID, true)

	app := fiber.New()
	registerAs(app, http.MethodPost, "/comments/:id/like", reader.ID, s.LikeComment)

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/comments/%d/like?view=comments", comment.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var thread []*models.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&thread))
	require.Len(t, thread, 2)

	var found bool
	for _, c := range thread {
		if c.ID == comment.ID {
			found = true
			assert.Equal(t, 1, c.Likes)
			assert.Equal(t, "like", c.MyReaction)
		}
	}
	assert.True(t, found)
}
