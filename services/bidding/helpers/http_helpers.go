package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
	"pet-auction/utils"
)

// Gin context keys set by the auth middleware
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// CurrentUser returns the authenticated caller's id
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONErrorWithDetails(c, http.StatusBadRequest, wrappedErr, "invalid request payload", map[string]any{
		"code":      "INVALID_PAYLOAD",
		"retryable": false,
	})
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no winning bid found"
	case errors.Is(err, biddingerrors.ErrNotAuthorized):
		return http.StatusForbidden, "not authorized"
	case errors.Is(err, biddingerrors.ErrLockTimeout):
		return http.StatusConflict, "auction busy, retry"
	}

	switch biddingerrors.KindOf(err) {
	case biddingerrors.KindValidation:
		return http.StatusBadRequest, "invalid request"
	case biddingerrors.KindNotFound:
		return http.StatusNotFound, "not found"
	case biddingerrors.KindStateConflict:
		return http.StatusConflict, "auction state changed"
	case biddingerrors.KindPolicyViolation:
		return http.StatusUnprocessableEntity, "request not allowed"
	case biddingerrors.KindDependencyFailure:
		return http.StatusServiceUnavailable, "dependency unavailable"
	case biddingerrors.KindUnknown:
	}
	return http.StatusInternalServerError, "internal server error"
}

// WriteError sends the error envelope with reason code and retry hint and logs it
func WriteError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	details := map[string]any{
		"code":      biddingerrors.Code(err),
		"retryable": biddingerrors.Retryable(err),
	}
	if minimum, ok := biddingerrors.MinimumFor(err); ok {
		details["minimum_amount"] = minimum.String()
	}
	utils.JSONErrorWithDetails(c, status, fmt.Errorf("%s: %w", message, err), message, details)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["code"] = details["code"]
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
	} else {
		utils.Warn(handlerName+": request rejected", fields)
	}
}

// ParseAmount reads a decimal money field. An empty optional field yields zero.
func ParseAmount(field, raw string, required bool) (decimal.Decimal, error) {
	if raw == "" && !required {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w - %s %q is not a decimal", biddingerrors.ErrInvalidBid, field, raw)
	}
	return amount, nil
}

// ToBidResponse converts a bid to its wire form
func ToBidResponse(bid models.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount.String(),
		Status:    string(bid.Status),
		IsAutoBid: bid.IsAutoBid,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponses converts a list of bids, never returning nil
func ToBidResponses(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
