package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"bidding-engine/internal/domain"
)

// fakePriceCache mimics the Redis fast path, including the CAS script's
// absent-key-means-zero rule and its in-script publish of accepted bids.
type fakePriceCache struct {
	mu        sync.Mutex
	states    map[string]*domain.AuctionPriceState
	published []*domain.BidEvent

	// frozenRead, when set, is returned by GetPriceState regardless of the
	// committed state, simulating a reader holding a stale snapshot.
	frozenRead *domain.AuctionPriceState

	getErr   error
	primeErr error
	casErr   error
}

func newFakePriceCache() *fakePriceCache {
	return &fakePriceCache{states: make(map[string]*domain.AuctionPriceState)}
}

func (f *fakePriceCache) GetPriceState(ctx context.Context, auctionID string) (*domain.AuctionPriceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.frozenRead != nil {
		copied := *f.frozenRead
		return &copied, nil
	}

	state, ok := f.states[auctionID]
	if !ok {
		return nil, domain.ErrPriceStateMiss
	}
	copied := *state
	return &copied, nil
}

func (f *fakePriceCache) PrimePriceState(ctx context.Context, auctionID string, state *domain.AuctionPriceState, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.primeErr != nil {
		return f.primeErr
	}
	copied := *state
	f.states[auctionID] = &copied
	return nil
}

func (f *fakePriceCache) CompareAndSetBid(ctx context.Context, auctionID string, candidateBid int64, bidderID, bidderName string, expectedPriorBid int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.casErr != nil {
		return false, f.casErr
	}

	var current int64
	if state, ok := f.states[auctionID]; ok {
		current = state.CurrentBid
	}

	if current != expectedPriorBid {
		return false, nil
	}

	f.states[auctionID] = &domain.AuctionPriceState{
		AuctionID:  auctionID,
		CurrentBid: candidateBid,
		BidderID:   bidderID,
		BidderName: bidderName,
		UpdatedAt:  time.Now(),
	}
	f.published = append(f.published, &domain.BidEvent{
		Type:       domain.BidAccepted,
		AuctionID:  auctionID,
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     candidateBid,
		Timestamp:  time.Now(),
	})
	return true, nil
}

func (f *fakePriceCache) publishedAmounts() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	amounts := make([]int64, 0, len(f.published))
	for _, e := range f.published {
		amounts = append(amounts, e.Amount)
	}
	return amounts
}

type fakeStatusCache struct {
	mu       sync.Mutex
	statuses map[string]domain.AuctionStatus
	err      error
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{statuses: make(map[string]domain.AuctionStatus)}
}

func (f *fakeStatusCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[auctionID] = status
	return nil
}

func (f *fakeStatusCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return domain.AuctionPending, f.err
	}
	return f.statuses[auctionID], nil
}

type fakeAuctionRepo struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
	getCalls int

	updateErr     error
	updatedBids   []int64
	updatedBidder []string
}

func newFakeAuctionRepo() *fakeAuctionRepo {
	return &fakeAuctionRepo{auctions: make(map[string]*domain.Auction)}
}

func (f *fakeAuctionRepo) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auctions[auction.ID] = auction
	return nil
}

func (f *fakeAuctionRepo) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	auction, ok := f.auctions[auctionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *auction
	return &copied, nil
}

func (f *fakeAuctionRepo) GetAuctionByEvent(ctx context.Context, eventID string) (*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, auction := range f.auctions {
		if auction.EventID == eventID {
			copied := *auction
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuctionRepo) ListAuctions(ctx context.Context) ([]*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var auctions []*domain.Auction
	for _, auction := range f.auctions {
		copied := *auction
		auctions = append(auctions, &copied)
	}
	return auctions, nil
}

func (f *fakeAuctionRepo) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	auction, ok := f.auctions[auctionID]
	if !ok {
		return sql.ErrNoRows
	}
	auction.Status = status
	return nil
}

func (f *fakeAuctionRepo) UpdateCurrentBid(ctx context.Context, auctionID string, bid int64, bidderID, bidderName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	auction, ok := f.auctions[auctionID]
	if !ok {
		return sql.ErrNoRows
	}
	auction.CurrentBid = bid
	auction.CurrentBidderID = bidderID
	auction.CurrentBidderName = bidderName
	f.updatedBids = append(f.updatedBids, bid)
	f.updatedBidder = append(f.updatedBidder, bidderID)
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	events  []*domain.BidEvent
	saveErr error
}

func (f *fakeHistoryRepo) SaveBidEvent(ctx context.Context, event *domain.BidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeHistoryRepo) GetBidHistory(ctx context.Context, auctionID string) ([]*domain.BidEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants []*domain.Participant
	addErr       error
}

func (f *fakeParticipantRepo) AddParticipant(ctx context.Context, p *domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.addErr != nil {
		return f.addErr
	}
	f.participants = append(f.participants, p)
	return nil
}

func (f *fakeParticipantRepo) GetParticipants(ctx context.Context, auctionID string) ([]*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participants, nil
}

func (f *fakeParticipantRepo) HasParticipant(ctx context.Context, auctionID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.participants {
		if p.AuctionID == auctionID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeWriteBackQueue struct {
	mu      sync.Mutex
	results []*domain.BidResult
}

func (f *fakeWriteBackQueue) Enqueue(result *domain.BidResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

func (f *fakeWriteBackQueue) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []broadcastCall
	err      error
}

type broadcastCall struct {
	auctionID string
	message   interface{}
}

func (f *fakeBroadcaster) BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, broadcastCall{auctionID: auctionID, message: message})
	return nil
}

type fakeConnectionManager struct {
	mu     sync.Mutex
	closed []string
}

func (f *fakeConnectionManager) RegisterConnection(userID, auctionID string, conn domain.WebSocketConnection) error {
	return nil
}

func (f *fakeConnectionManager) UnregisterConnection(userID, auctionID string) error {
	return nil
}

func (f *fakeConnectionManager) GetConnectionsForAuction(auctionID string) []domain.WebSocketConnection {
	return nil
}

func (f *fakeConnectionManager) BroadcastToAuction(auctionID string, message interface{}) error {
	return nil
}

func (f *fakeConnectionManager) CloseAndUnregisterConnections(auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, auctionID)
	return nil
}

type fakeLeaderElection struct {
	leader bool
}

func (f *fakeLeaderElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	return f.leader, nil
}

func (f *fakeLeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	return f.leader, nil
}

func (f *fakeLeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return nil
}

type fakeSchedulerRepo struct {
	mu   sync.Mutex
	jobs []*domain.ScheduledJob
}

func (f *fakeSchedulerRepo) CreateJob(ctx context.Context, job *domain.ScheduledJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeSchedulerRepo) GetPendingJobs(ctx context.Context, before time.Time) ([]*domain.ScheduledJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due []*domain.ScheduledJob
	for _, job := range f.jobs {
		if job.Status == domain.JobPending && !job.RunAt.After(before) {
			due = append(due, job)
		}
	}
	return due, nil
}

func (f *fakeSchedulerRepo) UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, job := range f.jobs {
		if job.ID == jobID {
			job.Status = status
		}
	}
	return nil
}

func (f *fakeSchedulerRepo) CancelJobsForAuction(ctx context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, job := range f.jobs {
		if job.AuctionID == auctionID && job.Status == domain.JobPending {
			job.Status = domain.JobCancelled
		}
	}
	return nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []*domain.BidEvent
}

func (f *fakeEventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

var errBackendDown = errors.New("connection refused")
