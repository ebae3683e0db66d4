package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"
)

// BidService coordinates one bid attempt end to end: read the fast-path
// snapshot (rehydrating from the durable store on miss), compute the
// candidate price, run exactly one compare-and-swap, and on success hand the
// result to the write-back queue. The broadcast is not triggered here; it is
// published inside the CAS script so that fan-out order matches commit order.
type BidService struct {
	priceCache  domain.PriceCache
	statusCache domain.StatusCache
	auctionRepo domain.AuctionRepository
	policy      *IncrementPolicy
	writeBack   domain.WriteBackQueue
	priceTTL    time.Duration
	log         logger.Logger
}

func NewBidService(
	priceCache domain.PriceCache,
	statusCache domain.StatusCache,
	auctionRepo domain.AuctionRepository,
	policy *IncrementPolicy,
	writeBack domain.WriteBackQueue,
	priceTTL time.Duration,
	log logger.Logger,
) *BidService {
	return &BidService{
		priceCache:  priceCache,
		statusCache: statusCache,
		auctionRepo: auctionRepo,
		policy:      policy,
		writeBack:   writeBack,
		priceTTL:    priceTTL,
		log:         log,
	}
}

// PlaceBid runs a single first-come-first-served bid attempt. A lost race
// surfaces as ErrBidConflict with no side effects; retrying is the caller's
// decision, made after re-reading the now-current price.
func (s *BidService) PlaceBid(ctx context.Context, auctionID, bidderID, bidderName string) (*domain.BidResult, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", domain.ErrValidation)
	}
	if bidderID == "" || bidderName == "" {
		return nil, fmt.Errorf("%w: bidder identity is required", domain.ErrValidation)
	}

	// Existence is settled before the status gate so an unknown auction is
	// not-found rather than rejected as inactive.
	state, err := s.currentState(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	status, err := s.statusCache.GetAuctionStatus(ctx, auctionID)
	if err != nil {
		return nil, backendError("read auction status", err)
	}
	if status != domain.AuctionActive {
		return nil, fmt.Errorf("%w: auction is %s", domain.ErrValidation, status)
	}

	candidate := s.policy.NextPrice(state.CurrentBid)

	accepted, err := s.priceCache.CompareAndSetBid(ctx, auctionID, candidate, bidderID, bidderName, state.CurrentBid)
	if err != nil {
		return nil, backendError("compare-and-swap", err)
	}
	if !accepted {
		return nil, fmt.Errorf("%w: another bid won at %d", domain.ErrBidConflict, state.CurrentBid)
	}

	result := &domain.BidResult{
		AuctionID:  auctionID,
		NewBid:     candidate,
		BidderID:   bidderID,
		BidderName: bidderName,
	}

	// Fire-and-forget: durable mirroring must not gate the response.
	s.writeBack.Enqueue(result)

	s.log.Info("Bid accepted", "auction_id", auctionID, "bidder_id", bidderID, "new_bid", candidate)
	return result, nil
}

// GetCurrentPrice is the cache-first read with durable fallback. A miss
// primes the cache so the next read within the TTL stays on the fast path.
func (s *BidService) GetCurrentPrice(ctx context.Context, auctionID string) (*domain.AuctionPriceState, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", domain.ErrValidation)
	}

	return s.currentState(ctx, auctionID)
}

func (s *BidService) currentState(ctx context.Context, auctionID string) (*domain.AuctionPriceState, error) {
	state, err := s.priceCache.GetPriceState(ctx, auctionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrPriceStateMiss) {
		return nil, backendError("read price state", err)
	}

	auction, err := s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, backendError("load auction", err)
	}

	state = &domain.AuctionPriceState{
		AuctionID:  auctionID,
		CurrentBid: auction.CurrentBid,
		BidderID:   auction.CurrentBidderID,
		BidderName: auction.CurrentBidderName,
		UpdatedAt:  auction.UpdatedAt,
	}

	if err := s.priceCache.PrimePriceState(ctx, auctionID, state, s.priceTTL); err != nil {
		// Without a primed entry the CAS script would see an absent key as
		// bid zero and misreport a conflict, so priming is not optional.
		return nil, backendError("prime price state", err)
	}

	s.log.Debug("Primed price state from durable store",
		"auction_id", auctionID, "current_bid", state.CurrentBid)
	return state, nil
}

func backendError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnavailable, op, err)
}
