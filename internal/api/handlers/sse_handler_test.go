package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/courtside/internal/api/handlers"
	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/providers"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

// timelineSource returns queued errors first, then a timeline
type timelineSource struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *timelineSource) Timeline(ctx context.Context, placeID string, filter repositories.IntentFilter) (*services.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &services.Timeline{PlaceID: placeID, Blocks: []*entities.TimeBlock{}}, nil
}

func (s *timelineSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func runStream(t *testing.T, handler *handlers.SSEHandler, placeID string, during func()) *httptest.ResponseRecorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream/places/"+placeID+"/timeline", nil)
	req.SetPathValue("id", placeID)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.StreamPlaceTimeline(w, req)
		close(done)
	}()

	during()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after cancel")
	}
	return w
}

func TestSSEHandler_StreamPlaceTimeline(t *testing.T) {
	t.Run("sends the initial timeline with stream headers", func(t *testing.T) {
		source := &timelineSource{}
		handler := handlers.NewSSEHandler(NewMockEventBus(), source, time.Hour)

		w := runStream(t, handler, "place-p", func() {
			require.Eventually(t, func() bool { return source.Calls() == 1 }, time.Second, 5*time.Millisecond)
			time.Sleep(20 * time.Millisecond)
		})

		result := w.Result()
		assert.Equal(t, "text/event-stream", result.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", result.Header.Get("Cache-Control"))
		assert.Contains(t, w.Body.String(), "event: timeline\n")
		assert.Contains(t, w.Body.String(), `"reason":"initial"`)
	})

	t.Run("recomputes when a place event arrives", func(t *testing.T) {
		bus := NewMockEventBus()
		source := &timelineSource{}
		handler := handlers.NewSSEHandler(bus, source, time.Hour)
		channel := providers.GetPlaceChannel("place-q")

		w := runStream(t, handler, "place-q", func() {
			require.Eventually(t, func() bool { return bus.SubscriberCount(channel) == 1 }, time.Second, 5*time.Millisecond)
			event := entities.NewPlaceEvent("place-q", entities.PlaceEventTypeIntentCreated, nil)
			require.NoError(t, bus.Publish(context.Background(), channel, event))
			require.Eventually(t, func() bool { return source.Calls() >= 2 }, time.Second, 5*time.Millisecond)
			time.Sleep(20 * time.Millisecond)
		})

		assert.Contains(t, w.Body.String(), `"reason":"intent_created"`)
	})

	t.Run("refreshes on the tick without an event bus", func(t *testing.T) {
		source := &timelineSource{}
		handler := handlers.NewSSEHandler(nil, source, 10*time.Millisecond)

		w := runStream(t, handler, "place-r", func() {
			require.Eventually(t, func() bool { return source.Calls() >= 3 }, time.Second, 5*time.Millisecond)
		})

		assert.Contains(t, w.Body.String(), `"reason":"refresh"`)
		assert.Equal(t, 0, handler.GetClientCount())
	})

	t.Run("retries an unavailable store before opening", func(t *testing.T) {
		source := &timelineSource{errs: []error{apperrors.NewUnavailableError("store down", errors.New("refused"))}}
		handler := handlers.NewSSEHandler(nil, source, time.Hour)

		w := runStream(t, handler, "place-s", func() {
			require.Eventually(t, func() bool { return source.Calls() == 2 }, time.Second, 5*time.Millisecond)
			time.Sleep(20 * time.Millisecond)
		})

		assert.True(t, strings.HasPrefix(w.Body.String(), "event: timeline\n"))
	})

	t.Run("unknown place is a plain 404", func(t *testing.T) {
		source := &timelineSource{errs: []error{apperrors.NewNotFoundError("place with id nope not found")}}
		handler := handlers.NewSSEHandler(nil, source, time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/api/stream/places/nope/timeline", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.StreamPlaceTimeline(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 1, source.Calls())
	})

	t.Run("missing place ID", func(t *testing.T) {
		handler := handlers.NewSSEHandler(nil, &timelineSource{}, time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/api/stream/places//timeline", nil)
		w := httptest.NewRecorder()

		handler.StreamPlaceTimeline(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
