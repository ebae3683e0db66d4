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

type schedulerFixture struct {
	repo      *fakeAuctionRepo
	status    *fakeStatusCache
	cache     *fakePriceCache
	publisher *fakeEventPublisher
	jobs      *fakeSchedulerRepo
	scheduler *CronAuctionScheduler
}

func newSchedulerFixture(t *testing.T, leader bool) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		repo:      newFakeAuctionRepo(),
		status:    newFakeStatusCache(),
		cache:     newFakePriceCache(),
		publisher: &fakeEventPublisher{},
		jobs:      &fakeSchedulerRepo{},
	}

	manager := NewAuctionManager(f.repo, f.status, f.cache, f.publisher, nil,
		&fakeLeaderElection{leader: leader}, time.Hour, "instance-1", logger.New())
	f.scheduler = NewCronAuctionScheduler(f.jobs, manager, logger.New())
	manager.SetScheduler(f.scheduler)

	f.repo.auctions[testAuctionID] = &domain.Auction{
		ID:      testAuctionID,
		EventID: "event-1",
		Status:  domain.AuctionPending,
	}
	f.jobs.jobs = append(f.jobs.jobs, &domain.ScheduledJob{
		ID:        "job-1",
		AuctionID: testAuctionID,
		JobType:   domain.JobOpenBidding,
		RunAt:     time.Now().Add(-time.Minute),
		Status:    domain.JobPending,
	})
	return f
}

func TestProcessPendingJobsExecutesOnLeader(t *testing.T) {
	f := newSchedulerFixture(t, true)

	f.scheduler.processPendingJobs(context.Background())

	assert.Equal(t, domain.JobExecuted, f.jobs.jobs[0].Status)
	assert.Equal(t, domain.AuctionActive, f.repo.auctions[testAuctionID].Status)
	assert.Equal(t, domain.AuctionActive, f.status.statuses[testAuctionID])

	// Price state seeded for the first bid
	state, err := f.cache.GetPriceState(context.Background(), testAuctionID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.CurrentBid)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.BiddingOpened, f.publisher.events[0].Type)
}

func TestProcessPendingJobsLeavesJobForLeader(t *testing.T) {
	f := newSchedulerFixture(t, false)

	f.scheduler.processPendingJobs(context.Background())

	// Non-leader must not consume the job or touch the auction
	assert.Equal(t, domain.JobPending, f.jobs.jobs[0].Status)
	assert.Equal(t, domain.AuctionPending, f.repo.auctions[testAuctionID].Status)
	assert.Empty(t, f.publisher.events)

	// The job is still due on a later tick
	due, err := f.jobs.GetPendingJobs(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestCloseBiddingIsLeaderGated(t *testing.T) {
	f := newSchedulerFixture(t, false)
	f.repo.auctions[testAuctionID].Status = domain.AuctionActive
	f.status.statuses[testAuctionID] = domain.AuctionActive

	manager := NewAuctionManager(f.repo, f.status, f.cache, f.publisher, f.scheduler,
		&fakeLeaderElection{leader: false}, time.Hour, "instance-2", logger.New())

	err := manager.CloseBidding(context.Background(), testAuctionID)
	assert.ErrorIs(t, err, domain.ErrNotLeader)
	assert.Equal(t, domain.AuctionActive, f.repo.auctions[testAuctionID].Status)
	assert.Empty(t, f.publisher.events)
}
