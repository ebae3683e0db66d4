package services

import (
	"context"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"
	"bidding-engine/pkg/utils"
)

// AuctionManager owns the auction lifecycle: record creation, scheduled
// open/close transitions and the cache seeding that makes an auction
// biddable. Transitions are leader-gated so only one instance fires them.
type AuctionManager struct {
	auctionRepo    domain.AuctionRepository
	statusCache    domain.StatusCache
	priceCache     domain.PriceCache
	eventPub       domain.EventPublisher
	scheduler      domain.AuctionScheduler
	leaderElection domain.LeaderElection
	priceTTL       time.Duration
	instanceID     string
	log            logger.Logger
}

func NewAuctionManager(
	auctionRepo domain.AuctionRepository,
	statusCache domain.StatusCache,
	priceCache domain.PriceCache,
	eventPub domain.EventPublisher,
	scheduler domain.AuctionScheduler,
	leaderElection domain.LeaderElection,
	priceTTL time.Duration,
	instanceID string,
	log logger.Logger,
) *AuctionManager {
	return &AuctionManager{
		auctionRepo:    auctionRepo,
		statusCache:    statusCache,
		priceCache:     priceCache,
		eventPub:       eventPub,
		scheduler:      scheduler,
		leaderElection: leaderElection,
		priceTTL:       priceTTL,
		instanceID:     instanceID,
		log:            log,
	}
}

func (am *AuctionManager) CreateAuction(ctx context.Context, eventID, name string, startTime, endTime time.Time) (*domain.Auction, error) {
	auction := &domain.Auction{
		ID:        utils.GenerateID("auction"),
		EventID:   eventID,
		Name:      name,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    domain.AuctionPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := am.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	if err := am.scheduler.ScheduleBiddingOpen(ctx, auction.ID, startTime); err != nil {
		return nil, err
	}

	if err := am.scheduler.ScheduleBiddingClose(ctx, auction.ID, endTime); err != nil {
		return nil, err
	}

	am.log.Info("Auction created", "auction_id", auction.ID, "event_id", eventID)
	return auction, nil
}

func (am *AuctionManager) OpenBidding(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil {
		return err
	}
	if !isLeader {
		return domain.ErrNotLeader
	}

	am.log.Info("Opening bidding", "auction_id", auctionID)

	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionActive); err != nil {
		return err
	}

	if err := am.statusCache.SetAuctionStatus(ctx, auctionID, domain.AuctionActive); err != nil {
		return err
	}

	// Seed the fast path so the first bid does not race the durable load.
	state := &domain.AuctionPriceState{
		AuctionID:  auctionID,
		CurrentBid: auction.CurrentBid,
		BidderID:   auction.CurrentBidderID,
		BidderName: auction.CurrentBidderName,
		UpdatedAt:  time.Now(),
	}
	if err := am.priceCache.PrimePriceState(ctx, auctionID, state, am.priceTTL); err != nil {
		return err
	}

	return am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.BiddingOpened,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	})
}

func (am *AuctionManager) CloseBidding(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil {
		return err
	}
	if !isLeader {
		return domain.ErrNotLeader
	}

	am.log.Info("Closing bidding", "auction_id", auctionID)

	// Check current status to prevent double-closing
	currentStatus, err := am.statusCache.GetAuctionStatus(ctx, auctionID)
	if err != nil || currentStatus != domain.AuctionActive {
		return nil
	}

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
		return err
	}

	if err := am.statusCache.SetAuctionStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
		return err
	}

	return am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.BiddingClosed,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	})
}

func (am *AuctionManager) SetScheduler(scheduler domain.AuctionScheduler) {
	am.scheduler = scheduler
}
