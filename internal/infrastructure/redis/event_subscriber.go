package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"

	"github.com/go-redis/redis/v8"
)

type EventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewEventSubscriber(client *redis.Client, log logger.Logger) *EventSubscriber {
	return &EventSubscriber{
		client: client,
		log:    log,
	}
}

func (s *EventSubscriber) SubscribeToBidEvents(ctx context.Context, handler domain.BidEventHandler) error {
	pubsub := s.client.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	s.log.Info("Subscribed to auction events")

	for {
		select {
		case msg := <-ch:
			event, err := parseBidEvent(msg.Payload)
			if err != nil {
				s.log.Error("Failed to parse event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(event); err != nil {
				s.log.Error("Failed to handle event", "event", event, "error", err)
			}

		case <-ctx.Done():
			s.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}

func parseBidEvent(payload string) (*domain.BidEvent, error) {
	var msg eventMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, err
	}

	if msg.Type == "" || msg.AuctionID == "" {
		return nil, fmt.Errorf("malformed event payload: %s", payload)
	}

	return &domain.BidEvent{
		Type:       domain.BidEventType(msg.Type),
		AuctionID:  msg.AuctionID,
		BidderID:   msg.BidderID,
		BidderName: msg.BidderName,
		Amount:     msg.Amount,
		Timestamp:  time.Unix(msg.Timestamp, 0),
	}, nil
}
