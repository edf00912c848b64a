package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/providers"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
	"github.com/zatekoja/courtside/pkg/retry"
)

// TimelineSource computes the current timeline of a place
type TimelineSource interface {
	Timeline(ctx context.Context, placeID string, filter repositories.IntentFilter) (*services.Timeline, error)
}

// timelineUpdate is the payload of each "timeline" stream event
type timelineUpdate struct {
	Reason   string             `json:"reason"`
	Timeline *services.Timeline `json:"timeline"`
}

// SSEHandler streams live place timelines. The stream recomputes on every
// place event and on a fixed refresh tick, so it stays correct with no event
// bus at all.
type SSEHandler struct {
	eventBus  providers.EventBus
	timelines TimelineSource
	refresh   time.Duration
	clients   map[string]map[chan *entities.PlaceEvent]struct{}
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler. eventBus may be nil.
func NewSSEHandler(eventBus providers.EventBus, timelines TimelineSource, refresh time.Duration) *SSEHandler {
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return &SSEHandler{
		eventBus:  eventBus,
		timelines: timelines,
		refresh:   refresh,
		clients:   make(map[string]map[chan *entities.PlaceEvent]struct{}),
	}
}

// StreamPlaceTimeline handles GET /api/stream/places/{id}/timeline?sport=
func (h *SSEHandler) StreamPlaceTimeline(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("id")
	if placeID == "" {
		respondWithError(w, http.StatusBadRequest, "place ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx).With().Str("place_id", placeID).Logger()
	filter := timelineFilter(r)

	// the first computation runs before the stream opens so an unknown place
	// is still a plain 404
	initial, err := h.compute(ctx, placeID, filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	channel := providers.GetPlaceChannel(placeID)
	clientChan := make(chan *entities.PlaceEvent, 16)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	if h.eventBus != nil {
		events, err := h.eventBus.Subscribe(ctx, channel)
		if err != nil {
			logger.Warn().Err(err).Msg("event subscription failed, streaming on refresh ticks only")
		} else {
			go h.forwardEvents(ctx, events, clientChan)
		}
	}

	h.sendEvent(w, "timeline", timelineUpdate{Reason: "initial", Timeline: initial})
	flusher.Flush()

	ticker := time.NewTicker(h.refresh)
	defer ticker.Stop()

	for {
		var reason string
		select {
		case <-ctx.Done():
			logger.Debug().Msg("timeline stream closed")
			return
		case <-ticker.C:
			reason = "refresh"
		case event := <-clientChan:
			if event == nil {
				continue
			}
			reason = string(event.EventType)
			drain(clientChan)
		}

		timeline, err := h.compute(ctx, placeID, filter)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("timeline refresh failed")
			h.sendEvent(w, "error", errorResponse{Error: "timeline temporarily unavailable", Type: string(apperrors.TypeOf(err))})
		} else {
			h.sendEvent(w, "timeline", timelineUpdate{Reason: reason, Timeline: timeline})
		}
		flusher.Flush()
	}
}

// compute reads the timeline, retrying only while the store is unavailable
func (h *SSEHandler) compute(ctx context.Context, placeID string, filter repositories.IntentFilter) (*services.Timeline, error) {
	var timeline *services.Timeline
	err := retry.DoIf(ctx, retry.ReadConfig(), func(err error) bool {
		return apperrors.IsType(err, apperrors.ErrorTypeUnavailable)
	}, func() error {
		var err error
		timeline, err = h.timelines.Timeline(ctx, placeID, filter)
		return err
	})
	return timeline, err
}

// forwardEvents forwards events from the event bus to a client channel
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.PlaceEvent, clientChan chan<- *entities.PlaceEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				// a recompute is already queued
			}
		}
	}
}

// drain discards queued events; one recompute covers all of them
func drain(ch <-chan *entities.PlaceEvent) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.PlaceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.PlaceEvent]struct{})
	}
	h.clients[channel][clientChan] = struct{}{}
}

func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.PlaceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[channel]; ok {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("event", eventType).Msg("failed to marshal stream event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
