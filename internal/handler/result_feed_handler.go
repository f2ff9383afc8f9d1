package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/service"
)

const feedPingInterval = 30 * time.Second

// ResultFeedHandler streams result events over a websocket.
type ResultFeedHandler struct {
	feed   service.ResultFeed
	logger zerolog.Logger
}

// NewResultFeedHandler constructs the handler.
func NewResultFeedHandler(feed service.ResultFeed, logger zerolog.Logger) *ResultFeedHandler {
	return &ResultFeedHandler{
		feed:   feed,
		logger: logger.With().Str("component", "result_feed_handler").Logger(),
	}
}

// Register binds the websocket upgrade under the provided router group.
func (h *ResultFeedHandler) Register(router fiber.Router) {
	router.Use("/events/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/events/ws", websocket.New(h.stream))
}

func (h *ResultFeedHandler) stream(conn *websocket.Conn) {
	events, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	logger := h.logger.With().Interface("user_id", conn.Locals("user_id")).Logger()
	logger.Info().Msg("result feed connected")
	defer logger.Info().Msg("result feed disconnected")

	// A reader is required to observe the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to encode result event")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
