package events

import (
	"context"
	"encoding/json"
	"time"

	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/logger"
)

const (
	channelName    = "surveyhub:events"
	publishTimeout = 5 * time.Second
)

// Event types published on the bus.
const (
	TypeResponseSaved = "response.saved"
	TypeUserCreated   = "user.created"
)

type Event struct {
	Type       string    `json:"type"`
	ResponseID string    `json:"responseId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	Status     string    `json:"status,omitempty"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventBus publishes domain events over the cache's pub/sub channel so
// dashboard clients can watch submissions live. Publishing is best effort;
// a failure is logged and never propagated into the originating request.
type EventBus struct {
	cache   database.CacheClient
	cancels []context.CancelFunc
	log     logger.Logger
}

func New(cache database.CacheClient, config config.Config) *EventBus {
	return &EventBus{
		cache: cache,
		log:   logger.New("events"),
	}
}

func (b *EventBus) PublishResponseSaved(responseID, userID, templateID, status string) {
	b.publish(Event{
		Type:       TypeResponseSaved,
		ResponseID: responseID,
		UserID:     userID,
		TemplateID: templateID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) PublishUserCreated(userID, username string) {
	b.publish(Event{
		Type:       TypeUserCreated,
		UserID:     userID,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) publish(event Event) {
	log := b.log.Function("publish")

	if b.cache == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Er("failed to marshal event", err, "type", event.Type)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.cache.Do(ctx, b.cache.B().Publish().Channel(channelName).Message(string(payload)).Build()).Error(); err != nil {
		log.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

// Subscribe delivers every published event to fn until the bus is closed.
func (b *EventBus) Subscribe(fn func(Event)) {
	log := b.log.Function("Subscribe")

	if b.cache == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancels = append(b.cancels, cancel)

	go func() {
		err := b.cache.Receive(ctx, b.cache.B().Subscribe().Channel(channelName).Build(), func(msg database.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Warn("failed to decode event", "error", err)
				return
			}
			fn(event)
		})
		if err != nil && ctx.Err() == nil {
			log.Er("event subscription ended", err)
		}
	}()
}

func (b *EventBus) Close() error {
	for _, cancel := range b.cancels {
		cancel()
	}
	return nil
}
