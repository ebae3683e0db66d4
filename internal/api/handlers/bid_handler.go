package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bidding-engine/internal/domain"
	"bidding-engine/internal/services"
	"bidding-engine/pkg/logger"

	"github.com/gorilla/mux"
)

type BidHandler struct {
	bidService *services.BidService
	log        logger.Logger
}

type PlaceBidRequest struct {
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
}

type PlaceBidResponse struct {
	Accepted   bool   `json:"accepted"`
	AuctionID  string `json:"auction_id"`
	NewBid     int64  `json:"new_bid"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
}

func NewBidHandler(bidService *services.BidService, log logger.Logger) *BidHandler {
	return &BidHandler{
		bidService: bidService,
		log:        log,
	}
}

func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["auctionID"]

	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.bidService.PlaceBid(r.Context(), auctionID, req.BidderID, req.BidderName)
	if err != nil {
		h.writeBidError(w, auctionID, err)
		return
	}

	writeJSON(w, http.StatusOK, PlaceBidResponse{
		Accepted:   true,
		AuctionID:  result.AuctionID,
		NewBid:     result.NewBid,
		BidderID:   result.BidderID,
		BidderName: result.BidderName,
	})
}

func (h *BidHandler) GetCurrentPrice(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["auctionID"]

	state, err := h.bidService.GetCurrentPrice(r.Context(), auctionID)
	if err != nil {
		h.writeBidError(w, auctionID, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// writeBidError keeps infrastructure failures distinct from lost races so a
// caller never treats an outage as "someone else won".
func (h *BidHandler) writeBidError(w http.ResponseWriter, auctionID string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrAuctionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "auction not found"})
	case errors.Is(err, domain.ErrBidConflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"accepted": false,
			"error":    "bid conflict, re-read the current price and retry",
		})
	case errors.Is(err, domain.ErrBackendUnavailable):
		h.log.Error("Backend failure", "auction_id", auctionID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backend unavailable"})
	default:
		h.log.Error("Unexpected error", "auction_id", auctionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
