package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
)

func testSchedule(t *testing.T) *engine.Schedule {
	t.Helper()
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	s, err := engine.NewSchedule(day, engine.Timings{
		Fajr:    "05:31",
		Sunrise: "07:02",
		Dhuhr:   "12:30",
		Asr:     "15:45",
		Maghrib: "18:10",
		Isha:    "20:00",
	})
	require.NoError(t, err)
	return s
}

// -----------------------------------------------------------------------------
// Renderer
// -----------------------------------------------------------------------------

func TestRenderFeed(t *testing.T) {
	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

	data, err := Render(testSchedule(t), "Paris", now)
	require.NoError(t, err)
	feed := string(data)

	assert.Contains(t, feed, "BEGIN:VCALENDAR")
	assert.Contains(t, feed, "X-WR-CALNAME:"+config.ICalCalName)
	for _, prayer := range engine.MainPrayers {
		assert.Contains(t, feed, "SUMMARY:"+prayer)
	}
	assert.Contains(t, feed, "SUMMARY:Sunrise")
	assert.Contains(t, feed, "UID:2025-03-14-fajr@"+config.ICalDomain)
	assert.Contains(t, feed, "LOCATION:Paris")
	// Fajr 05:31 on the schedule's day, in the renderer's timezone.
	assert.Contains(t, feed, "DTSTART:20250314T053100Z")
}

func TestRenderFeedWithoutCity(t *testing.T) {
	data, err := Render(testSchedule(t), "", time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "LOCATION")
}

// -----------------------------------------------------------------------------
// Handler (white-box)
// -----------------------------------------------------------------------------

func TestHandlerServesFeed(t *testing.T) {
	srv := NewScheduleServer("0")
	feed := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(feed)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.handleFeedRequest(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, feed, body)
}

func TestHandlerBeforeFirstUpdate(t *testing.T) {
	srv := NewScheduleServer("0")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.handleFeedRequest(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandlerETagCaching(t *testing.T) {
	srv := NewScheduleServer("0")
	srv.Update([]byte("FEED_V1"))

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	srv.handleFeedRequest(w1, req1)

	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()
	srv.handleFeedRequest(w2, req2)

	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body)
}

func TestHandlerETagChangesWithContent(t *testing.T) {
	srv := NewScheduleServer("0")
	srv.Update([]byte("FEED_V1"))

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	srv.handleFeedRequest(w1, req1)
	etag1 := w1.Result().Header.Get(config.HeaderETag)

	srv.Update([]byte("FEED_V2"))

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag1)
	w2 := httptest.NewRecorder()
	srv.handleFeedRequest(w2, req2)

	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp2.StatusCode, "stale ETag must fetch the new feed")
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	srv := NewScheduleServer("0")
	srv.Update([]byte("FEED"))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/", nil)
		w := httptest.NewRecorder()
		srv.handleFeedRequest(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode, method)
	}
}

func TestHandlerHeadOmitsBody(t *testing.T) {
	srv := NewScheduleServer("0")
	srv.Update([]byte("FEED"))

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	w := httptest.NewRecorder()
	srv.handleFeedRequest(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}
