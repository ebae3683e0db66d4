package services

import (
	"testing"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventListenerBroadcastsInCommitOrder(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	listener := NewEventListener(&fakeConnectionManager{}, broadcaster, logger.New())

	amounts := []int64{50, 60, 70, 80}
	for _, amount := range amounts {
		err := listener.HandleBidEvent(&domain.BidEvent{
			Type:      domain.BidAccepted,
			AuctionID: testAuctionID,
			BidderID:  "user-1",
			Amount:    amount,
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	require.Len(t, broadcaster.messages, len(amounts))
	for i, call := range broadcaster.messages {
		assert.Equal(t, testAuctionID, call.auctionID)
		payload := call.message.(map[string]interface{})
		assert.Equal(t, "bid_update", payload["type"])
		assert.Equal(t, amounts[i], payload["current_bid"])
	}
}

func TestEventListenerClosesConnectionsWhenBiddingCloses(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	connManager := &fakeConnectionManager{}
	listener := NewEventListener(connManager, broadcaster, logger.New())

	err := listener.HandleBidEvent(&domain.BidEvent{
		Type:      domain.BiddingClosed,
		AuctionID: testAuctionID,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testAuctionID}, connManager.closed)
	require.Len(t, broadcaster.messages, 1)
	payload := broadcaster.messages[0].message.(map[string]interface{})
	assert.Equal(t, "bidding_closed", payload["type"])
}

func TestEventListenerRejectsUnknownEventType(t *testing.T) {
	listener := NewEventListener(&fakeConnectionManager{}, &fakeBroadcaster{}, logger.New())

	err := listener.HandleBidEvent(&domain.BidEvent{
		Type:      domain.BidEventType("mystery"),
		AuctionID: testAuctionID,
	})
	assert.Error(t, err)
}
