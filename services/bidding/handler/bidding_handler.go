package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/auth"
	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
	"pet-auction/services/bidding/helpers"
	"pet-auction/utils"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_handler.go -package=handler

type BiddingServiceInterface interface {
	CreateAuction(ctx context.Context, in bidding.NewAuction) (models.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (models.AuctionView, error)
	CloseAuction(ctx context.Context, auctionID, userID string) (models.SettlementResult, error)
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error)
	CancelBid(ctx context.Context, bidID, userID string) (models.Bid, error)
	GetBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error)
	GetBidsByUser(ctx context.Context, userID string) ([]models.Bid, error)
	GetUserStats(ctx context.Context, userID string) (models.BidStats, error)
	GetWinsByUser(ctx context.Context, userID string) ([]models.Bid, error)
	Rules() bidding.Rules
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions. The caller becomes the seller.
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	in, err := toNewAuction(helpers.CurrentUser(c), req)
	if err != nil {
		helpers.WriteError(c, "CreateAuctionHandler", err, nil)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), in)
	if err != nil {
		helpers.WriteError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": in.SellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  auction.SellerID,
	})
}

func toNewAuction(sellerID string, req helpers.CreateAuctionRequest) (bidding.NewAuction, error) {
	starting, err := helpers.ParseAmount("starting_price", req.StartingPrice, true)
	if err != nil {
		return bidding.NewAuction{}, err
	}
	increment, err := helpers.ParseAmount("min_increment", req.MinIncrement, false)
	if err != nil {
		return bidding.NewAuction{}, err
	}

	in := bidding.NewAuction{
		SellerID:      sellerID,
		Title:         req.Title,
		StartingPrice: starting,
		MinIncrement:  increment,
		EndTime:       req.EndTime,
	}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	if req.BuyNowPrice != "" {
		buyNow, err := helpers.ParseAmount("buy_now_price", req.BuyNowPrice, true)
		if err != nil {
			return bidding.NewAuction{}, err
		}
		in.BuyNowPrice = &buyNow
	}
	return in, nil
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	view, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, view, "auction retrieved successfully")
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	userID := helpers.CurrentUser(c)

	result, err := h.service.CloseAuction(c.Request.Context(), auctionID, userID)
	if err != nil {
		helpers.WriteError(c, "CloseAuctionHandler", err, map[string]any{"auction_id": auctionID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, result, "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"auction_id": auctionID,
		"outcome":    string(result.Outcome),
	})
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	userID := helpers.CurrentUser(c)
	amount, err := helpers.ParseAmount("amount", req.Amount, true)
	if err != nil {
		helpers.WriteError(c, "RecordBidHandler", err, map[string]any{"auction_id": req.AuctionID})
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.AuctionID, userID, amount)
	if err != nil {
		helpers.WriteError(c, "RecordBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    userID,
			"amount":     amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"user_id":    userID,
		"amount":     bid.Amount.String(),
	})
}

// CancelBidHandler handles DELETE /bids/:bid_id
func (h *BiddingHandler) CancelBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")
	userID := helpers.CurrentUser(c)

	bid, err := h.service.CancelBid(c.Request.Context(), bidID, userID)
	if err != nil {
		helpers.WriteError(c, "CancelBidHandler", err, map[string]any{"bid_id": bidID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "bid cancelled successfully")
	helpers.LogSuccess("CancelBidHandler", "bid cancelled successfully", map[string]any{"bid_id": bidID, "user_id": userID})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, "GetBidsByAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, "GetWinningBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "winning bid retrieved successfully")
}

// GetBidsByUserHandler handles GET /users/:user_id/bids
func (h *BiddingHandler) GetBidsByUserHandler(c *gin.Context) {
	userID, ok := h.ownUser(c, "GetBidsByUserHandler")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.WriteError(c, "GetBidsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
}

// GetUserStatsHandler handles GET /users/:user_id/stats
func (h *BiddingHandler) GetUserStatsHandler(c *gin.Context) {
	userID, ok := h.ownUser(c, "GetUserStatsHandler")
	if !ok {
		return
	}

	stats, err := h.service.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		helpers.WriteError(c, "GetUserStatsHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, stats, "statistics retrieved successfully")
}

// GetWinsByUserHandler handles GET /users/:user_id/wins
func (h *BiddingHandler) GetWinsByUserHandler(c *gin.Context) {
	userID, ok := h.ownUser(c, "GetWinsByUserHandler")
	if !ok {
		return
	}

	wins, err := h.service.GetWinsByUser(c.Request.Context(), userID)
	if err != nil {
		helpers.WriteError(c, "GetWinsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(wins), "wins retrieved successfully")
}

// GetRulesHandler handles GET /rules
func (h *BiddingHandler) GetRulesHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.service.Rules(), "rules retrieved successfully")
}

// ownUser lets users read their own history; admins may read anyone's
func (h *BiddingHandler) ownUser(c *gin.Context, handlerName string) (string, bool) {
	userID := c.Param("user_id")
	if userID == helpers.CurrentUser(c) || c.GetString(helpers.RoleKey) == auth.RoleAdmin {
		return userID, true
	}
	helpers.WriteError(c, handlerName, fmt.Errorf("handler: %w - history of %s", biddingerrors.ErrNotAuthorized, userID), map[string]any{
		"user_id": userID,
		"caller":  helpers.CurrentUser(c),
	})
	return "", false
}
