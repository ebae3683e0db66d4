package websocket

import (
	"context"

	"bidding-engine/internal/domain"
)

type Notifier struct {
	connManager domain.ConnectionManager
}

func NewNotifier(connManager domain.ConnectionManager) *Notifier {
	return &Notifier{connManager: connManager}
}

func (n *Notifier) BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error {
	return n.connManager.BroadcastToAuction(auctionID, message)
}
