package domain

import (
	"time"
)

// AuctionPriceState is the authoritative fast-path snapshot of one auction's
// bidding. Amounts are integer currency units so the compare-and-swap
// equality check is exact across Go, Lua and JSON.
type AuctionPriceState struct {
	AuctionID  string    `json:"auction_id"`
	CurrentBid int64     `json:"current_bid"`
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BidResult struct {
	AuctionID  string `json:"auction_id"`
	NewBid     int64  `json:"new_bid"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
}

type Auction struct {
	ID                string
	EventID           string
	Name              string
	StartTime         time.Time
	EndTime           time.Time
	Status            AuctionStatus
	CurrentBid        int64
	CurrentBidderID   string
	CurrentBidderName string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type AuctionStatus int

const (
	AuctionPending AuctionStatus = iota
	AuctionActive
	AuctionEnded
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionPending:
		return "pending"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type BidEvent struct {
	Type       BidEventType `json:"type"`
	AuctionID  string       `json:"auction_id"`
	BidderID   string       `json:"bidder_id"`
	BidderName string       `json:"bidder_name"`
	Amount     int64        `json:"amount"`
	Timestamp  time.Time    `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted   BidEventType = "bid_accepted"
	BiddingOpened BidEventType = "bidding_opened"
	BiddingClosed BidEventType = "bidding_closed"
)

// RegistrationMessage is the intake payload from the registration
// collaborator. Eligibility enforcement stays outside this engine; the
// message only maintains the participant roster.
type RegistrationMessage struct {
	EventID  string `json:"event_id"`
	Role     string `json:"role"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	TeamName string `json:"team_name,omitempty"`
}

const (
	RoleBidder = "owner"
	RolePlayer = "player"
)

type Participant struct {
	AuctionID string
	UserID    string
	Username  string
	Role      string
	TeamName  string
	CreatedAt time.Time
}

type ScheduledJob struct {
	ID        string
	AuctionID string
	JobType   JobType
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobType string

const (
	JobOpenBidding  JobType = "open_bidding"
	JobCloseBidding JobType = "close_bidding"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuted  JobStatus = "executed"
	JobCancelled JobStatus = "cancelled"
)
