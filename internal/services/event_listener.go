package services

import (
	"context"
	"fmt"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"
)

// EventListener bridges the auction_events channel to this instance's
// websocket observers. Each engine instance runs one listener, so every
// instance fans accepted bids out to its own connections regardless of which
// instance committed the bid.
type EventListener struct {
	broadcaster       domain.AuctionBroadcaster
	connectionManager domain.ConnectionManager
	log               logger.Logger
}

func NewEventListener(connectionManager domain.ConnectionManager,
	broadcaster domain.AuctionBroadcaster, log logger.Logger) *EventListener {
	return &EventListener{
		broadcaster:       broadcaster,
		connectionManager: connectionManager,
		log:               log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.SubscribeToBidEvents(ctx, el.HandleBidEvent)
}

func (el *EventListener) HandleBidEvent(event *domain.BidEvent) error {
	switch event.Type {
	case domain.BidAccepted:
		return el.handleBidAccepted(event)
	case domain.BiddingOpened:
		return el.handleBiddingOpened(event)
	case domain.BiddingClosed:
		return el.handleBiddingClosed(event)
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}

func (el *EventListener) handleBidAccepted(event *domain.BidEvent) error {
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":        "bid_update",
		"current_bid": event.Amount,
		"bidder_id":   event.BidderID,
		"bidder_name": event.BidderName,
		"timestamp":   event.Timestamp,
	})
}

func (el *EventListener) handleBiddingOpened(event *domain.BidEvent) error {
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":      "bidding_opened",
		"timestamp": event.Timestamp,
	})
}

func (el *EventListener) handleBiddingClosed(event *domain.BidEvent) error {
	if err := el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":      "bidding_closed",
		"timestamp": event.Timestamp,
	}); err != nil {
		el.log.Error("Failed to broadcast bidding closed", "auction_id", event.AuctionID, "error", err)
		return err
	}

	if err := el.connectionManager.CloseAndUnregisterConnections(event.AuctionID); err != nil {
		el.log.Error("Failed to finalize connections for auction",
			"auction_id", event.AuctionID, "error", err)
		return err
	}
	return nil
}
