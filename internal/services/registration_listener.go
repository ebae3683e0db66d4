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

// RegistrationListener maintains the participant roster from intake messages
// published by the registration service. The engine never enforces bidder
// eligibility on the bid path; the roster exists for the auction API.
type RegistrationListener struct {
	auctionRepo     domain.AuctionRepository
	participantRepo domain.ParticipantRepository
	log             logger.Logger
}

func NewRegistrationListener(auctionRepo domain.AuctionRepository,
	participantRepo domain.ParticipantRepository, log logger.Logger) *RegistrationListener {
	return &RegistrationListener{
		auctionRepo:     auctionRepo,
		participantRepo: participantRepo,
		log:             log,
	}
}

func (rl *RegistrationListener) Start(ctx context.Context, subscriber domain.RegistrationSubscriber) error {
	rl.log.Info("Starting registration listener")
	return subscriber.SubscribeToRegistrations(ctx, rl.HandleRegistration)
}

func (rl *RegistrationListener) HandleRegistration(msg *domain.RegistrationMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if msg.Role != domain.RoleBidder && msg.Role != domain.RolePlayer {
		return fmt.Errorf("invalid role %q for user %s", msg.Role, msg.UserID)
	}
	if msg.Role == domain.RoleBidder && msg.TeamName == "" {
		return fmt.Errorf("team name is required for owner registration, user %s", msg.UserID)
	}

	auction, err := rl.auctionRepo.GetAuctionByEvent(ctx, msg.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no auction for event %s", msg.EventID)
		}
		return err
	}

	exists, err := rl.participantRepo.HasParticipant(ctx, auction.ID, msg.UserID)
	if err != nil {
		return err
	}
	if exists {
		rl.log.Info("Participant already registered",
			"auction_id", auction.ID, "user_id", msg.UserID)
		return nil
	}

	participant := &domain.Participant{
		AuctionID: auction.ID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Role:      msg.Role,
		TeamName:  msg.TeamName,
		CreatedAt: time.Now(),
	}

	if err := rl.participantRepo.AddParticipant(ctx, participant); err != nil {
		return err
	}

	rl.log.Info("Participant added", "auction_id", auction.ID,
		"user_id", msg.UserID, "role", msg.Role)
	return nil
}
