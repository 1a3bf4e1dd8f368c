package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/gateway"
	"pet-auction/internal/models"
	"pet-auction/services/bidding/helpers"
	"pet-auction/utils"
)

//go:generate mockgen -source=admin_handler.go -destination=mock_admin_handler.go -package=handler

// SweeperInterface runs one expiration pass on demand
type SweeperInterface interface {
	RunOnce(ctx context.Context) ([]models.SweepResult, error)
}

// AdminHandler serves operator endpoints. Deposits and suspensions are owned
// by external subsystems; these routes stand in for their feeds.
type AdminHandler struct {
	sweeper  SweeperInterface
	deposits gateway.DepositWriter
	accounts gateway.AccountWriter
}

func NewAdminHandler(sweeper SweeperInterface, deposits gateway.DepositWriter, accounts gateway.AccountWriter) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, deposits: deposits, accounts: accounts}
}

// SweepHandler handles POST /admin/sweep
func (h *AdminHandler) SweepHandler(c *gin.Context) {
	results, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		helpers.WriteError(c, "SweepHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, results, "sweep completed")
	helpers.LogSuccess("SweepHandler", "sweep completed", map[string]any{"processed": len(results)})
}

// PutDepositHandler handles POST /admin/deposits
func (h *AdminHandler) PutDepositHandler(c *gin.Context) {
	var req helpers.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PutDepositHandler", err)
		return
	}

	amount, err := helpers.ParseAmount("amount", req.Amount, true)
	if err != nil {
		helpers.WriteError(c, "PutDepositHandler", fmt.Errorf("%w: %v", biddingerrors.ErrInvalidDeposit, err), nil)
		return
	}

	deposit := models.Deposit{
		UserID:    req.UserID,
		AuctionID: req.AuctionID,
		Amount:    amount,
		Status:    models.DepositStatus(req.Status),
	}
	if err := h.deposits.PutDeposit(c.Request.Context(), deposit); err != nil {
		helpers.WriteError(c, "PutDepositHandler", err, map[string]any{"user_id": req.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, nil, "deposit recorded")
	helpers.LogSuccess("PutDepositHandler", "deposit recorded", map[string]any{
		"user_id":    req.UserID,
		"auction_id": req.AuctionID,
		"amount":     amount.String(),
	})
}

// SuspensionHandler handles POST /admin/suspensions
func (h *AdminHandler) SuspensionHandler(c *gin.Context) {
	var req helpers.SuspensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SuspensionHandler", err)
		return
	}

	if err := h.accounts.SetSuspended(c.Request.Context(), req.UserID, req.Suspended); err != nil {
		helpers.WriteError(c, "SuspensionHandler", err, map[string]any{"user_id": req.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "account standing updated")
	helpers.LogSuccess("SuspensionHandler", "account standing updated", map[string]any{
		"user_id":   req.UserID,
		"suspended": req.Suspended,
	})
}
