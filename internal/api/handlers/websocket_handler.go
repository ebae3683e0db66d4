package handlers

import (
	"context"
	"errors"
	"net/http"

	"bidding-engine/internal/domain"
	ws "bidding-engine/internal/infrastructure/websocket"
	"bidding-engine/internal/services"
	"bidding-engine/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type WebSocketHandler struct {
	bidService  *services.BidService
	connManager domain.ConnectionManager
	log         logger.Logger
}

// clientMessage is the typed envelope for everything a client sends over the
// live feed; unknown or malformed messages are answered with a typed error.
type clientMessage struct {
	Type string `json:"type"`
}

func NewWebSocketHandler(bidService *services.BidService,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bidService:  bidService,
		connManager: connManager,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	auctionID := mux.Vars(r)["auctionID"]

	userID := r.URL.Query().Get("user_id")
	userName := r.URL.Query().Get("user_name")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	// Reject feeds for auctions nobody can bid on before upgrading.
	state, err := h.bidService.GetCurrentPrice(r.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			http.Error(w, "auction not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to load auction state", "auction_id", auctionID, "error", err)
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := ws.NewConnection(conn, userID, auctionID, h.log)

	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		wsConn.Close()
		return
	}

	// Current snapshot first, so a new observer starts from the leading bid.
	wsConn.Send(map[string]interface{}{
		"type":        "price_snapshot",
		"auction_id":  state.AuctionID,
		"current_bid": state.CurrentBid,
		"bidder_id":   state.BidderID,
		"bidder_name": state.BidderName,
	})

	go h.handleMessages(wsConn, userID, userName, auctionID)
}

func (h *WebSocketHandler) handleMessages(conn *ws.Connection, userID, userName, auctionID string) {
	defer func() {
		h.connManager.UnregisterConnection(userID, auctionID)
		conn.Close()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debug("Connection read ended", "user_id", userID, "error", err)
			break
		}

		switch msg.Type {
		case "place_bid":
			h.handleBidMessage(conn, userID, userName, auctionID)
		case "ping":
			conn.Send(map[string]string{"type": "pong"})
		default:
			conn.Send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *WebSocketHandler) handleBidMessage(conn *ws.Connection, userID, userName, auctionID string) {
	result, err := h.bidService.PlaceBid(context.Background(), auctionID, userID, userName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBidConflict):
			conn.Send(map[string]string{"type": "bid_rejected", "reason": "conflict"})
		case errors.Is(err, domain.ErrValidation):
			conn.Send(map[string]string{"type": "bid_rejected", "reason": err.Error()})
		default:
			h.log.Error("Failed to place bid", "auction_id", auctionID, "user_id", userID, "error", err)
			conn.Send(map[string]string{"type": "error", "message": "failed to place bid"})
		}
		return
	}

	conn.Send(map[string]interface{}{
		"type":    "bid_accepted",
		"new_bid": result.NewBid,
	})
}
