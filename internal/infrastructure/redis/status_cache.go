package redis

import (
	"context"
	"fmt"
	"strconv"

	"bidding-engine/internal/domain"

	"github.com/go-redis/redis/v8"
)

type StatusCache struct {
	client *redis.Client
}

func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

func (c *StatusCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	key := fmt.Sprintf("auction:%s:status", auctionID)
	return c.client.Set(ctx, key, int(status), 0).Err()
}

func (c *StatusCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, error) {
	key := fmt.Sprintf("auction:%s:status", auctionID)

	result, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.AuctionPending, nil
		}
		return domain.AuctionPending, err
	}

	status, err := strconv.Atoi(result)
	if err != nil {
		return domain.AuctionPending, err
	}

	return domain.AuctionStatus(status), nil
}
