package services

import (
	"context"
	"errors"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"
	"bidding-engine/pkg/utils"

	"github.com/robfig/cron/v3"
)

type CronAuctionScheduler struct {
	cron       *cron.Cron
	repo       domain.SchedulerRepository
	auctionMgr *AuctionManager
	log        logger.Logger
}

func NewCronAuctionScheduler(repo domain.SchedulerRepository, auctionMgr *AuctionManager,
	log logger.Logger) *CronAuctionScheduler {
	return &CronAuctionScheduler{
		cron:       cron.New(cron.WithSeconds()),
		repo:       repo,
		auctionMgr: auctionMgr,
		log:        log,
	}
}

func (s *CronAuctionScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting auction scheduler")

	_, err := s.cron.AddFunc("@every 1m", func() {
		s.processPendingJobs(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronAuctionScheduler) Stop() error {
	s.log.Info("Stopping auction scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronAuctionScheduler) ScheduleBiddingOpen(ctx context.Context, auctionID string, startTime time.Time) error {
	job := &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobOpenBidding,
		RunAt:     startTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	}

	return s.repo.CreateJob(ctx, job)
}

func (s *CronAuctionScheduler) ScheduleBiddingClose(ctx context.Context, auctionID string, endTime time.Time) error {
	job := &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobCloseBidding,
		RunAt:     endTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	}

	return s.repo.CreateJob(ctx, job)
}

func (s *CronAuctionScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.repo.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronAuctionScheduler) processPendingJobs(ctx context.Context) {
	jobs, err := s.repo.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		var err error
		switch job.JobType {
		case domain.JobOpenBidding:
			err = s.auctionMgr.OpenBidding(ctx, job.AuctionID)
		case domain.JobCloseBidding:
			err = s.auctionMgr.CloseBidding(ctx, job.AuctionID)
		}

		if errors.Is(err, domain.ErrNotLeader) {
			// Job stays pending; the leader's tick fires the transition.
			continue
		}

		if err != nil {
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			// Don't mark as executed on error, will retry
			continue
		}

		s.log.Info("Executed job", "job_id", job.ID, "type", job.JobType, "auction_id", job.AuctionID)
		s.repo.UpdateJobStatus(ctx, job.ID, domain.JobExecuted)
	}
}
