package domain

import (
	"context"
	"time"
)

// Repository interfaces
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	GetAuctionByEvent(ctx context.Context, eventID string) (*Auction, error)
	ListAuctions(ctx context.Context) ([]*Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	UpdateCurrentBid(ctx context.Context, auctionID string, bid int64, bidderID, bidderName string) error
}

type BidHistoryRepository interface {
	SaveBidEvent(ctx context.Context, event *BidEvent) error
	GetBidHistory(ctx context.Context, auctionID string) ([]*BidEvent, error)
}

type ParticipantRepository interface {
	AddParticipant(ctx context.Context, p *Participant) error
	GetParticipants(ctx context.Context, auctionID string) ([]*Participant, error)
	HasParticipant(ctx context.Context, auctionID, userID string) (bool, error)
}

type SchedulerRepository interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}

// Cache interfaces
type PriceCache interface {
	// GetPriceState returns ErrPriceStateMiss when the entry expired or was
	// never primed.
	GetPriceState(ctx context.Context, auctionID string) (*AuctionPriceState, error)

	// PrimePriceState unconditionally overwrites the entry. Seeding only;
	// bid commits go through CompareAndSetBid.
	PrimePriceState(ctx context.Context, auctionID string, state *AuctionPriceState, ttl time.Duration) error

	// CompareAndSetBid commits candidateBid only if the stored current bid
	// still equals expectedPriorBid, as one indivisible server-side step.
	// Returns false with a nil error when the race was lost.
	CompareAndSetBid(ctx context.Context, auctionID string, candidateBid int64, bidderID, bidderName string, expectedPriorBid int64) (bool, error)
}

type StatusCache interface {
	SetAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetAuctionStatus(ctx context.Context, auctionID string) (AuctionStatus, error)
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler BidEventHandler) error
}

type BidEventHandler func(event *BidEvent) error

type RegistrationSubscriber interface {
	SubscribeToRegistrations(ctx context.Context, handler RegistrationHandler) error
}

type RegistrationHandler func(msg *RegistrationMessage) error

// Write-back interface. Enqueue must never block the caller.
type WriteBackQueue interface {
	Enqueue(result *BidResult)
}

// Notification interfaces
type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	GetConnectionsForAuction(auctionID string) []WebSocketConnection
	BroadcastToAuction(auctionID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler interface
type AuctionScheduler interface {
	ScheduleBiddingOpen(ctx context.Context, auctionID string, startTime time.Time) error
	ScheduleBiddingClose(ctx context.Context, auctionID string, endTime time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}
