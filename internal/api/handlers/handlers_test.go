package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/service"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPosts struct {
	err      error
	post     *models.ScheduledPost
	lastUser int64
	lastID   string
	created  *transfer.CreateScheduledPost
}

func (s *stubPosts) Create(ctx context.Context, userID int64, in *transfer.CreateScheduledPost) (*models.ScheduledPost, error) {
	s.lastUser, s.created = userID, in
	return s.post, s.err
}
func (s *stubPosts) List(ctx context.Context, userID int64, in *transfer.ListScheduledPosts) (*transfer.ScheduledPostPage, error) {
	return &transfer.ScheduledPostPage{Posts: []*models.ScheduledPost{}, Page: in.Page, Limit: in.Limit}, s.err
}
func (s *stubPosts) Get(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error) {
	s.lastUser, s.lastID = userID, id
	return s.post, s.err
}
func (s *stubPosts) Update(ctx context.Context, userID int64, id string, in *transfer.UpdateScheduledPost) (*models.ScheduledPost, error) {
	return s.post, s.err
}
func (s *stubPosts) Cancel(ctx context.Context, userID int64, id string) error {
	s.lastUser, s.lastID = userID, id
	return s.err
}
func (s *stubPosts) PublishNow(ctx context.Context, userID int64, id string) (*models.ScheduledPost, error) {
	return s.post, s.err
}
func (s *stubPosts) PublishOnce(ctx context.Context, userID int64, in *transfer.PublishOnce) (*transfer.PublishResult, error) {
	return &transfer.PublishResult{ID: "1"}, s.err
}

func (s *stubPosts) History(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	return []*models.PostingHistory{}, s.err
}

func newPostApp(s *stubPosts) *fiber.App {
	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		return c.Next()
	})

	h := NewScheduledPostHandler(s)
	app.Post("/posts/scheduled", h.Create)
	app.Get("/posts/scheduled", h.List)
	app.Get("/posts/scheduled/:id", h.Get)
	app.Delete("/posts/scheduled/:id", h.Cancel)
	app.Post("/posts/scheduled/:id/publish", h.PublishNow)
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: message is required", service.ErrValidation), fiber.StatusBadRequest},
		{service.ErrPlatformNotConnected, fiber.StatusBadRequest},
		{service.ErrPlatformNotPublishable, fiber.StatusBadRequest},
		{fmt.Errorf("%w: scheduled post", service.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: published -> cancelled", service.ErrInvalidTransition), fiber.StatusConflict},
		{service.ErrUnauthorized, fiber.StatusUnauthorized},
		{service.ErrAINotConfigured, fiber.StatusBadGateway},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestCreateScheduledPostHandler(t *testing.T) {
	s := &stubPosts{post: &models.ScheduledPost{Status: models.PostStatusScheduled}}
	app := newPostApp(s)

	body := `{"platform":"facebook","message":"hi","scheduled_time":"2030-01-01T10:00:00Z","media_urls":["https://cdn.example.com/a.png"]}`
	req := httptest.NewRequest("POST", "/posts/scheduled", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(7), s.lastUser)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, s.created.MediaURLs)
	assert.Equal(t, "scheduled", decodeBody(t, resp.Body)["status"])
}

func TestScheduledPostHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		req  *http.Request
		want int
	}{
		{
			name: "past time",
			err:  fmt.Errorf("%w: scheduled_time must be in the future", service.ErrValidation),
			req:  jsonRequest("POST", "/posts/scheduled", `{"platform":"facebook"}`),
			want: fiber.StatusBadRequest,
		},
		{
			name: "other user's post",
			err:  fmt.Errorf("%w: scheduled post", service.ErrNotFound),
			req:  jsonRequest("GET", "/posts/scheduled/abc", ""),
			want: fiber.StatusNotFound,
		},
		{
			name: "cancel published",
			err:  fmt.Errorf("%w: published -> cancelled", service.ErrInvalidTransition),
			req:  jsonRequest("DELETE", "/posts/scheduled/abc", ""),
			want: fiber.StatusConflict,
		},
		{
			name: "store down",
			err:  errors.New("server selection timeout"),
			req:  jsonRequest("GET", "/posts/scheduled/abc", ""),
			want: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newPostApp(&stubPosts{err: tt.err})
			resp, err := app.Test(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			body := decodeBody(t, resp.Body)
			if tt.want == fiber.StatusInternalServerError {
				assert.Equal(t, "Something went wrong", body["error"])
			} else {
				assert.Equal(t, tt.err.Error(), body["error"])
			}
		})
	}
}

func TestPublishNowFailureReturnsPost(t *testing.T) {
	post := &models.ScheduledPost{Status: models.PostStatusScheduled, RetryCount: 1, ErrorMessage: "facebook: (#200) denied"}
	app := newPostApp(&stubPosts{post: post, err: fmt.Errorf("%w: denied", service.ErrPublishFailed)})

	resp, err := app.Test(httptest.NewRequest("POST", "/posts/scheduled/abc/publish", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "facebook: (#200) denied", body["error"])
	assert.Equal(t, float64(1), body["post"].(map[string]any)["retry_count"])
}

func TestCancelPassesRouteID(t *testing.T) {
	s := &stubPosts{}
	app := newPostApp(s)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/posts/scheduled/65f0c0ffee", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "65f0c0ffee", s.lastID)
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate("2025-03-01", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = parseDate("2025-03-01", true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC), got)

	got, ok = parseDate("2025-03-01T10:00:00+02:00", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), got)

	got, ok = parseDate("", false)
	assert.True(t, ok)
	assert.True(t, got.IsZero())

	_, ok = parseDate("yesterday", false)
	assert.False(t, ok)
}

func jsonRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
