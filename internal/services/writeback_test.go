package services

import (
	"context"
	"testing"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBackPersistsAcceptedBid(t *testing.T) {
	repo := newFakeAuctionRepo()
	repo.auctions[testAuctionID] = &domain.Auction{ID: testAuctionID}
	history := &fakeHistoryRepo{}

	worker := NewWriteBackWorker(repo, history, 16, logger.New())
	worker.Start()

	worker.Enqueue(&domain.BidResult{
		AuctionID:  testAuctionID,
		NewBid:     50,
		BidderID:   "user-1",
		BidderName: "Alice",
	})
	worker.Stop()

	require.Equal(t, []int64{50}, repo.updatedBids)
	assert.Equal(t, []string{"user-1"}, repo.updatedBidder)

	require.Len(t, history.events, 1)
	assert.Equal(t, domain.BidAccepted, history.events[0].Type)
	assert.Equal(t, int64(50), history.events[0].Amount)
}

func TestWriteBackPreservesCommitOrder(t *testing.T) {
	repo := newFakeAuctionRepo()
	repo.auctions[testAuctionID] = &domain.Auction{ID: testAuctionID}
	history := &fakeHistoryRepo{}

	worker := NewWriteBackWorker(repo, history, 16, logger.New())
	worker.Start()

	for _, bid := range []int64{50, 60, 70} {
		worker.Enqueue(&domain.BidResult{AuctionID: testAuctionID, NewBid: bid, BidderID: "user-1", BidderName: "Alice"})
	}
	worker.Stop()

	assert.Equal(t, []int64{50, 60, 70}, repo.updatedBids)
}

func TestWriteBackFailureIsAbsorbed(t *testing.T) {
	repo := newFakeAuctionRepo()
	repo.auctions[testAuctionID] = &domain.Auction{ID: testAuctionID}
	repo.updateErr = errBackendDown
	history := &fakeHistoryRepo{}

	worker := NewWriteBackWorker(repo, history, 16, logger.New())
	worker.Start()

	// Enqueue never returns an error and never blocks the caller
	worker.Enqueue(&domain.BidResult{AuctionID: testAuctionID, NewBid: 50, BidderID: "user-1", BidderName: "Alice"})
	worker.Stop()

	// Durable update failed, so no history row either
	assert.Empty(t, repo.updatedBids)
	assert.Empty(t, history.events)
}

func TestWriteBackFailureDoesNotTouchFastPath(t *testing.T) {
	f := newBidServiceFixture(t)
	f.primeCache(t, 40)

	repo := f.repo
	repo.updateErr = errBackendDown
	history := &fakeHistoryRepo{}
	worker := NewWriteBackWorker(repo, history, 16, logger.New())
	worker.Start()

	// Coordinator wired to the real worker instead of the recording fake
	service := NewBidService(f.cache, f.status, repo, NewIncrementPolicy(),
		worker, time.Hour, logger.New())

	result, err := service.PlaceBid(context.Background(), testAuctionID, "user-1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.NewBid)

	worker.Stop()

	// The accepted response stands and the fast path still shows the winner
	state, err := service.GetCurrentPrice(context.Background(), testAuctionID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), state.CurrentBid)
	assert.Equal(t, "user-1", state.BidderID)
}

func TestWriteBackFullQueueDropsWithoutBlocking(t *testing.T) {
	repo := newFakeAuctionRepo()
	history := &fakeHistoryRepo{}

	// Worker not started: the queue fills and the overflow must be dropped
	worker := NewWriteBackWorker(repo, history, 1, logger.New())

	done := make(chan struct{})
	go func() {
		worker.Enqueue(&domain.BidResult{AuctionID: testAuctionID, NewBid: 50})
		worker.Enqueue(&domain.BidResult{AuctionID: testAuctionID, NewBid: 60})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
