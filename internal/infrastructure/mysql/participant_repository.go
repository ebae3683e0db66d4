package mysql

import (
	"context"
	"database/sql"

	"bidding-engine/internal/domain"
)

type ParticipantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) AddParticipant(ctx context.Context, p *domain.Participant) error {
	// INSERT IGNORE keeps re-delivered registration messages idempotent.
	query := `
        INSERT IGNORE INTO auction_participants (auction_id, user_id, username, role, team_name, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		p.AuctionID, p.UserID, p.Username, p.Role, p.TeamName, p.CreatedAt)
	return err
}

func (r *ParticipantRepository) GetParticipants(ctx context.Context, auctionID string) ([]*domain.Participant, error) {
	query := `
        SELECT auction_id, user_id, username, role, team_name, created_at
        FROM auction_participants
        WHERE auction_id = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		var p domain.Participant
		err := rows.Scan(&p.AuctionID, &p.UserID, &p.Username, &p.Role, &p.TeamName, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}

	return participants, rows.Err()
}

func (r *ParticipantRepository) HasParticipant(ctx context.Context, auctionID, userID string) (bool, error) {
	query := `SELECT 1 FROM auction_participants WHERE auction_id = ? AND user_id = ? LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query, auctionID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
