package redis

import (
	"context"
	"encoding/json"

	"bidding-engine/internal/domain"

	"github.com/go-redis/redis/v8"
)

// eventMessage is the wire shape on the auction_events channel. It must stay
// in sync with the event the CAS script encodes; timestamps are unix seconds.
type eventMessage struct {
	Type       string `json:"type"`
	AuctionID  string `json:"auction_id"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     int64  `json:"amount"`
	Timestamp  int64  `json:"timestamp"`
}

type EventPublisher struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	msg := eventMessage{
		Type:       string(event.Type),
		AuctionID:  event.AuctionID,
		BidderID:   event.BidderID,
		BidderName: event.BidderName,
		Amount:     event.Amount,
		Timestamp:  event.Timestamp.Unix(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, eventsChannel, data).Err()
}
