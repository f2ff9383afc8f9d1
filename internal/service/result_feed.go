package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const feedBufferSize = 16

// ResultFeed relays result events from the broker to live subscribers, e.g.
// staff dashboards waiting for sheets to be published.
type ResultFeed interface {
	Start(ctx context.Context)
	Subscribe() (<-chan ResultEvent, func())
	Broadcast(event ResultEvent)
}

type brokerResultFeed struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger

	mu          sync.RWMutex
	subscribers map[chan ResultEvent]struct{}
}

// NewResultFeed consumes the same channels NewResultEventPublisher writes
// to. Redis is preferred when both brokers are configured so an event is
// relayed once.
func NewResultFeed(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ResultFeed {
	feed := &brokerResultFeed{
		logger:      logger.With().Str("component", "result_feed").Logger(),
		subscribers: make(map[chan ResultEvent]struct{}),
	}
	if channelBase == "" {
		return feed
	}
	if redisClient != nil {
		feed.redis = redisClient
		feed.redisStream = channelBase + ":results"
	} else if natsConn != nil {
		feed.nats = natsConn
		feed.natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".results"
	}
	return feed
}

func (f *brokerResultFeed) Start(ctx context.Context) {
	switch {
	case f.redis != nil:
		pubsub := f.redis.Subscribe(ctx, f.redisStream)
		go f.consumeRedis(ctx, pubsub)
	case f.nats != nil:
		f.consumeNATS(ctx)
	}
}

func (f *brokerResultFeed) Subscribe() (<-chan ResultEvent, func()) {
	ch := make(chan ResultEvent, feedBufferSize)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast delivers event to every subscriber. Slow subscribers lose the
// event rather than blocking the feed.
func (f *brokerResultFeed) Broadcast(event ResultEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			f.logger.Debug().Str("type", event.Type).Msg("dropping result event for slow subscriber")
		}
	}
}

func (f *brokerResultFeed) consumeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			f.logger.Error().Err(err).Msg("result redis subscription closed")
			return
		}
		f.handle([]byte(msg.Payload))
	}
}

func (f *brokerResultFeed) consumeNATS(ctx context.Context) {
	sub, err := f.nats.Subscribe(f.natsSubject, func(msg *nats.Msg) {
		f.handle(msg.Data)
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to subscribe to nats result subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			f.logger.Warn().Err(err).Msg("failed to drain result nats subscription")
		}
	}()
}

func (f *brokerResultFeed) handle(data []byte) {
	var event ResultEvent
	if err := json.Unmarshal(data, &event); err != nil {
		f.logger.Warn().Err(err).Msg("invalid result event")
		return
	}
	f.Broadcast(event)
}
