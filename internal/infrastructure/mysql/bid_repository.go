package mysql

import (
	"context"
	"database/sql"
	"time"

	"bidding-engine/internal/domain"
)

type BidHistoryRepository struct {
	db *sql.DB
}

func NewBidHistoryRepository(db *sql.DB) *BidHistoryRepository {
	return &BidHistoryRepository{db: db}
}

func (r *BidHistoryRepository) SaveBidEvent(ctx context.Context, event *domain.BidEvent) error {
	query := `
        INSERT INTO bid_events (auction_id, bidder_id, bidder_name, amount, event_type, timestamp, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.AuctionID, event.BidderID, event.BidderName, event.Amount,
		string(event.Type), event.Timestamp, time.Now())
	return err
}

func (r *BidHistoryRepository) GetBidHistory(ctx context.Context, auctionID string) ([]*domain.BidEvent, error) {
	query := `
        SELECT auction_id, bidder_id, bidder_name, amount, event_type, timestamp
        FROM bid_events
        WHERE auction_id = ? AND event_type = 'bid_accepted'
        ORDER BY timestamp ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.BidEvent
	for rows.Next() {
		var event domain.BidEvent
		var eventType string

		err := rows.Scan(&event.AuctionID, &event.BidderID, &event.BidderName,
			&event.Amount, &eventType, &event.Timestamp)
		if err != nil {
			return nil, err
		}

		event.Type = domain.BidEventType(eventType)
		events = append(events, &event)
	}

	return events, rows.Err()
}
