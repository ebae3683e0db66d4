package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bidding-engine/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventsChannel = "auction_events"

// casScript validates the expected prior bid and commits the candidate in a
// single server-side step. The PUBLISH happens inside the script so that
// broadcast order always equals commit order. Returns 1 on commit, 0 when
// the stored bid no longer matches the expected prior (race lost).
const casScript = `
    local key = KEYS[1]
    local candidate = tonumber(ARGV[1])
    local bidder_id = ARGV[2]
    local bidder_name = ARGV[3]
    local expected = tonumber(ARGV[4])
    local ttl = tonumber(ARGV[5])
    local now = tonumber(ARGV[6])
    local auction_id = ARGV[7]
    local channel = ARGV[8]

    local current = 0
    local data = redis.call('GET', key)
    if data then
        local decoded = cjson.decode(data)
        current = tonumber(decoded['current_bid'])
    end

    if current ~= expected then
        return 0
    end

    local doc = cjson.encode({
        current_bid = candidate,
        bidder_id = bidder_id,
        bidder_name = bidder_name,
        updated_at = now,
    })
    redis.call('SET', key, doc, 'EX', ttl)

    local event = cjson.encode({
        type = 'bid_accepted',
        auction_id = auction_id,
        bidder_id = bidder_id,
        bidder_name = bidder_name,
        amount = candidate,
        timestamp = now,
    })
    redis.call('PUBLISH', channel, event)

    return 1
`

// priceDoc is the wire shape of the cached state. Timestamps travel as unix
// seconds because the Lua side writes plain numbers.
type priceDoc struct {
	CurrentBid int64  `json:"current_bid"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	UpdatedAt  int64  `json:"updated_at"`
}

type PriceCache struct {
	client     *redis.Client
	ttl        time.Duration
	casTimeout time.Duration
}

func NewPriceCache(client *redis.Client, ttl, casTimeout time.Duration) *PriceCache {
	return &PriceCache{
		client:     client,
		ttl:        ttl,
		casTimeout: casTimeout,
	}
}

func priceKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:price", auctionID)
}

func (c *PriceCache) GetPriceState(ctx context.Context, auctionID string) (*domain.AuctionPriceState, error) {
	data, err := c.client.Get(ctx, priceKey(auctionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrPriceStateMiss
		}
		return nil, err
	}

	var doc priceDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}

	return &domain.AuctionPriceState{
		AuctionID:  auctionID,
		CurrentBid: doc.CurrentBid,
		BidderID:   doc.BidderID,
		BidderName: doc.BidderName,
		UpdatedAt:  time.Unix(doc.UpdatedAt, 0),
	}, nil
}

func (c *PriceCache) PrimePriceState(ctx context.Context, auctionID string, state *domain.AuctionPriceState, ttl time.Duration) error {
	doc := priceDoc{
		CurrentBid: state.CurrentBid,
		BidderID:   state.BidderID,
		BidderName: state.BidderName,
		UpdatedAt:  state.UpdatedAt.Unix(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, priceKey(auctionID), data, ttl).Err()
}

func (c *PriceCache) CompareAndSetBid(ctx context.Context, auctionID string, candidateBid int64, bidderID, bidderName string, expectedPriorBid int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.casTimeout)
	defer cancel()

	result, err := c.client.Eval(ctx, casScript, []string{priceKey(auctionID)},
		strconv.FormatInt(candidateBid, 10),
		bidderID,
		bidderName,
		strconv.FormatInt(expectedPriorBid, 10),
		int(c.ttl.Seconds()),
		time.Now().Unix(),
		auctionID,
		eventsChannel,
	).Result()

	if err != nil {
		return false, err
	}

	return result.(int64) == 1, nil
}
