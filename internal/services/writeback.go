package services

import (
	"context"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"
)

// WriteBackWorker mirrors accepted bids into the durable store from outside
// the response path. Its goroutine lives for the process, not for any
// request, so an accepted bid keeps draining even after its handler returns.
// Failures are logged and dropped: the fast path stays authoritative while
// the auction is live, and the bidder already has the accepted response.
type WriteBackWorker struct {
	auctionRepo domain.AuctionRepository
	history     domain.BidHistoryRepository
	queue       chan *domain.BidResult
	done        chan struct{}
	timeout     time.Duration
	log         logger.Logger
}

func NewWriteBackWorker(
	auctionRepo domain.AuctionRepository,
	history domain.BidHistoryRepository,
	queueSize int,
	log logger.Logger,
) *WriteBackWorker {
	return &WriteBackWorker{
		auctionRepo: auctionRepo,
		history:     history,
		queue:       make(chan *domain.BidResult, queueSize),
		done:        make(chan struct{}),
		timeout:     5 * time.Second,
		log:         log,
	}
}

func (w *WriteBackWorker) Start() {
	go func() {
		defer close(w.done)
		for result := range w.queue {
			w.persist(result)
		}
	}()
	w.log.Info("Write-back worker started", "queue_size", cap(w.queue))
}

// Stop drains queued items, then returns.
func (w *WriteBackWorker) Stop() {
	close(w.queue)
	<-w.done
	w.log.Info("Write-back worker stopped")
}

// Enqueue never blocks. When the queue is full the item is dropped with an
// error log; the durable copy catches up on the next accepted bid.
func (w *WriteBackWorker) Enqueue(result *domain.BidResult) {
	select {
	case w.queue <- result:
	default:
		w.log.Error("Write-back queue full, dropping item",
			"auction_id", result.AuctionID, "new_bid", result.NewBid)
	}
}

func (w *WriteBackWorker) persist(result *domain.BidResult) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.auctionRepo.UpdateCurrentBid(ctx, result.AuctionID,
		result.NewBid, result.BidderID, result.BidderName); err != nil {
		w.log.Error("Write-back failed", "auction_id", result.AuctionID,
			"new_bid", result.NewBid, "error", err)
		return
	}

	event := &domain.BidEvent{
		Type:       domain.BidAccepted,
		AuctionID:  result.AuctionID,
		BidderID:   result.BidderID,
		BidderName: result.BidderName,
		Amount:     result.NewBid,
		Timestamp:  time.Now(),
	}
	if err := w.history.SaveBidEvent(ctx, event); err != nil {
		w.log.Error("Failed to append bid history", "auction_id", result.AuctionID,
			"new_bid", result.NewBid, "error", err)
	}
}
