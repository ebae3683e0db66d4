package mysql

import (
	"context"
	"database/sql"
	"time"

	"bidding-engine/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type AuctionRepository struct {
	db *sql.DB
}

func NewAuctionRepository(db *sql.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

const auctionColumns = `
    id, event_id, name, start_time, end_time, status,
    current_bid, current_bidder_id, current_bidder_name,
    created_at, updated_at
`

func (r *AuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, event_id, name, start_time, end_time, status,
                              current_bid, current_bidder_id, current_bidder_name,
                              created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.EventID, auction.Name,
		auction.StartTime, auction.EndTime, int(auction.Status),
		auction.CurrentBid, auction.CurrentBidderID, auction.CurrentBidderName,
		auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (r *AuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`
	return r.scanAuction(r.db.QueryRowContext(ctx, query, auctionID))
}

func (r *AuctionRepository) GetAuctionByEvent(ctx context.Context, eventID string) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE event_id = ?`
	return r.scanAuction(r.db.QueryRowContext(ctx, query, eventID))
}

func (r *AuctionRepository) ListAuctions(ctx context.Context) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		auction, err := r.scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}

	return auctions, rows.Err()
}

func (r *AuctionRepository) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, int(status), time.Now(), auctionID)
	return err
}

func (r *AuctionRepository) UpdateCurrentBid(ctx context.Context, auctionID string, bid int64, bidderID, bidderName string) error {
	query := `
        UPDATE auctions
        SET current_bid = ?, current_bidder_id = ?, current_bidder_name = ?, updated_at = ?
        WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query, bid, bidderID, bidderName, time.Now(), auctionID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *AuctionRepository) scanAuction(row rowScanner) (*domain.Auction, error) {
	var auction domain.Auction
	var status int
	var bidderID, bidderName sql.NullString

	err := row.Scan(&auction.ID, &auction.EventID, &auction.Name,
		&auction.StartTime, &auction.EndTime, &status,
		&auction.CurrentBid, &bidderID, &bidderName,
		&auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	auction.CurrentBidderID = bidderID.String
	auction.CurrentBidderName = bidderName.String
	return &auction, nil
}
