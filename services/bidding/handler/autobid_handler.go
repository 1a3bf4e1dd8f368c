package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pet-auction/internal/models"
	"pet-auction/services/bidding/helpers"
	"pet-auction/utils"
)

//go:generate mockgen -source=autobid_handler.go -destination=mock_autobid_handler.go -package=handler

type AutoBidServiceInterface interface {
	Create(ctx context.Context, auctionID, userID string, maxAmount, step decimal.Decimal) (models.AutoBid, error)
	Pause(ctx context.Context, autoBidID, userID string) (models.AutoBid, error)
	Resume(ctx context.Context, autoBidID, userID string) (models.AutoBid, error)
	Cancel(ctx context.Context, autoBidID, userID string) (models.AutoBid, error)
}

type AutoBidHandler struct {
	service AutoBidServiceInterface
}

func NewAutoBidHandler(service AutoBidServiceInterface) *AutoBidHandler {
	return &AutoBidHandler{service: service}
}

// CreateAutoBidHandler handles POST /auctions/:auction_id/autobids
func (h *AutoBidHandler) CreateAutoBidHandler(c *gin.Context) {
	var req helpers.CreateAutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAutoBidHandler", err)
		return
	}

	auctionID := c.Param("auction_id")
	userID := helpers.CurrentUser(c)
	fields := map[string]any{"auction_id": auctionID, "user_id": userID}

	maxAmount, err := helpers.ParseAmount("max_amount", req.MaxAmount, true)
	if err != nil {
		helpers.WriteError(c, "CreateAutoBidHandler", err, fields)
		return
	}
	step, err := helpers.ParseAmount("step", req.Step, false)
	if err != nil {
		helpers.WriteError(c, "CreateAutoBidHandler", err, fields)
		return
	}

	ab, err := h.service.Create(c.Request.Context(), auctionID, userID, maxAmount, step)
	if err != nil {
		helpers.WriteError(c, "CreateAutoBidHandler", err, fields)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, ab, "auto-bid created successfully")
	helpers.LogSuccess("CreateAutoBidHandler", "auto-bid created successfully", map[string]any{
		"autobid_id": ab.AutoBidID,
		"auction_id": auctionID,
		"user_id":    userID,
		"state":      string(ab.State),
	})
}

// PauseAutoBidHandler handles POST /autobids/:autobid_id/pause
func (h *AutoBidHandler) PauseAutoBidHandler(c *gin.Context) {
	h.change(c, "PauseAutoBidHandler", "auto-bid paused successfully", h.service.Pause)
}

// ResumeAutoBidHandler handles POST /autobids/:autobid_id/resume
func (h *AutoBidHandler) ResumeAutoBidHandler(c *gin.Context) {
	h.change(c, "ResumeAutoBidHandler", "auto-bid resumed successfully", h.service.Resume)
}

// CancelAutoBidHandler handles DELETE /autobids/:autobid_id
func (h *AutoBidHandler) CancelAutoBidHandler(c *gin.Context) {
	h.change(c, "CancelAutoBidHandler", "auto-bid cancelled successfully", h.service.Cancel)
}

func (h *AutoBidHandler) change(c *gin.Context, handlerName, message string, fn func(ctx context.Context, autoBidID, userID string) (models.AutoBid, error)) {
	autoBidID := c.Param("autobid_id")
	userID := helpers.CurrentUser(c)

	ab, err := fn(c.Request.Context(), autoBidID, userID)
	if err != nil {
		helpers.WriteError(c, handlerName, err, map[string]any{"autobid_id": autoBidID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, ab, message)
	helpers.LogSuccess(handlerName, message, map[string]any{"autobid_id": autoBidID, "state": string(ab.State)})
}
