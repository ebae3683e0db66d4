package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"bidding-engine/internal/domain"
	"bidding-engine/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const registrationChannel = "registration_events"

// RegistrationSubscriber consumes roster messages published by the external
// registration service. Delivery is at-most-once; a dropped message is
// re-published upstream, not recovered here.
type RegistrationSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewRegistrationSubscriber(client *redis.Client, log logger.Logger) *RegistrationSubscriber {
	return &RegistrationSubscriber{
		client: client,
		log:    log,
	}
}

func (s *RegistrationSubscriber) SubscribeToRegistrations(ctx context.Context, handler domain.RegistrationHandler) error {
	pubsub := s.client.Subscribe(ctx, registrationChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	s.log.Info("Subscribed to registration events")

	for {
		select {
		case msg := <-ch:
			reg, err := parseRegistration(msg.Payload)
			if err != nil {
				s.log.Error("Failed to parse registration", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(reg); err != nil {
				s.log.Error("Failed to handle registration", "event_id", reg.EventID,
					"user_id", reg.UserID, "error", err)
			}

		case <-ctx.Done():
			s.log.Info("Registration subscriber stopped")
			return ctx.Err()
		}
	}
}

func parseRegistration(payload string) (*domain.RegistrationMessage, error) {
	var msg domain.RegistrationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, err
	}

	if msg.EventID == "" || msg.Role == "" || msg.UserID == "" || msg.Username == "" {
		return nil, fmt.Errorf("missing required fields in registration: %s", payload)
	}

	return &msg, nil
}
