package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"bidding-engine/internal/domain"
	"bidding-engine/internal/services"
	"bidding-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctionManager  *services.AuctionManager
	auctionRepo     domain.AuctionRepository
	participantRepo domain.ParticipantRepository
	historyRepo     domain.BidHistoryRepository
	log             logger.Logger
}

type CreateAuctionRequest struct {
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type CreateAuctionResponse struct {
	AuctionID string    `json:"auction_id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func NewAuctionHandler(auctionManager *services.AuctionManager,
	auctionRepo domain.AuctionRepository,
	participantRepo domain.ParticipantRepository,
	historyRepo domain.BidHistoryRepository,
	log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionManager:  auctionManager,
		auctionRepo:     auctionRepo,
		participantRepo: participantRepo,
		historyRepo:     historyRepo,
		log:             log,
	}
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.EventID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Event ID is required"})
	}

	if req.StartTime.Before(time.Now()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Start time must be in the future"})
	}

	if req.EndTime.Before(req.StartTime) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "End time must be after start time"})
	}

	auction, err := h.auctionManager.CreateAuction(c.Request().Context(), req.EventID, req.Name, req.StartTime, req.EndTime)
	if err != nil {
		h.log.Error("Failed to create auction", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create auction"})
	}

	h.log.Info("Auction created successfully", "auction_id", auction.ID)
	return c.JSON(http.StatusCreated, CreateAuctionResponse{
		AuctionID: auction.ID,
		EventID:   auction.EventID,
		Name:      auction.Name,
		StartTime: auction.StartTime,
		EndTime:   auction.EndTime,
		Status:    auction.Status.String(),
	})
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.auctionRepo.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
		}
		h.log.Error("Failed to fetch auction", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch auction"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction_id":          auction.ID,
		"event_id":            auction.EventID,
		"name":                auction.Name,
		"start_time":          auction.StartTime,
		"end_time":            auction.EndTime,
		"status":              auction.Status.String(),
		"current_bid":         auction.CurrentBid,
		"current_bidder_id":   auction.CurrentBidderID,
		"current_bidder_name": auction.CurrentBidderName,
	})
}

func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	auctions, err := h.auctionRepo.ListAuctions(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to list auctions", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list auctions"})
	}

	type item struct {
		AuctionID string `json:"auction_id"`
		EventID   string `json:"event_id"`
		Name      string `json:"name"`
		Status    string `json:"status"`
	}

	items := make([]item, 0, len(auctions))
	for _, a := range auctions {
		items = append(items, item{
			AuctionID: a.ID,
			EventID:   a.EventID,
			Name:      a.Name,
			Status:    a.Status.String(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"auctions": items})
}

func (h *AuctionHandler) GetParticipants(c echo.Context) error {
	auctionID := c.Param("id")

	participants, err := h.participantRepo.GetParticipants(c.Request().Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to fetch participants", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch participants"})
	}

	type item struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		TeamName string `json:"team_name,omitempty"`
	}

	items := make([]item, 0, len(participants))
	for _, p := range participants {
		items = append(items, item{
			UserID:   p.UserID,
			Username: p.Username,
			Role:     p.Role,
			TeamName: p.TeamName,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"participants": items})
}

func (h *AuctionHandler) GetBidHistory(c echo.Context) error {
	auctionID := c.Param("id")

	events, err := h.historyRepo.GetBidHistory(c.Request().Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to fetch bid history", "auction_id", auctionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch bid history"})
	}

	type item struct {
		BidderID   string    `json:"bidder_id"`
		BidderName string    `json:"bidder_name"`
		Amount     int64     `json:"amount"`
		Timestamp  time.Time `json:"timestamp"`
	}

	items := make([]item, 0, len(events))
	for _, e := range events {
		items = append(items, item{
			BidderID:   e.BidderID,
			BidderName: e.BidderName,
			Amount:     e.Amount,
			Timestamp:  e.Timestamp,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"bids": items})
}
