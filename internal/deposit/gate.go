package deposit

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/gateway"
	"pet-auction/internal/models"
	"pet-auction/utils"
)

// Gate decides whether a user may bid at all. It never mutates state and
// fails closed when a collaborator cannot answer.
type Gate struct {
	deposits gateway.DepositSource
	accounts gateway.AccountSource
	rate     decimal.Decimal
}

// NewGate builds a Gate. rate is the share of the current price a general
// deposit must cover, e.g. 0.10.
func NewGate(deposits gateway.DepositSource, accounts gateway.AccountSource, rate decimal.Decimal) *Gate {
	return &Gate{deposits: deposits, accounts: accounts, rate: rate}
}

// Required returns the general deposit needed to bid at the auction's current price
func (g *Gate) Required(auction models.Auction) decimal.Decimal {
	return auction.CurrentPrice.Mul(g.rate)
}

// CheckEligibility returns nil when the user may bid amount on auction.
//
// Checks run in order: suspended account, forfeited auction deposit, a
// live auction deposit, then a general deposit covering current_price * rate.
func (g *Gate) CheckEligibility(ctx context.Context, userID string, auction models.Auction, amount decimal.Decimal) error {
	suspended, err := g.accounts.IsSuspended(ctx, userID)
	if err != nil {
		return g.dependency("account", userID, auction, err)
	}
	if suspended {
		return g.deny(userID, auction, amount, biddingerrors.ErrAccountSuspended, "account suspended")
	}

	dep, err := g.deposits.GetAuctionDeposit(ctx, userID, auction.AuctionID)
	if err != nil {
		return g.dependency("deposit", userID, auction, err)
	}
	if dep != nil {
		switch dep.Status {
		case models.DepositForfeited:
			return g.deny(userID, auction, amount, biddingerrors.ErrInsufficientDeposit, "auction deposit forfeited")
		case models.DepositActive, models.DepositFrozen:
			if dep.Amount.IsPositive() {
				return nil
			}
		case models.DepositRefunded:
		}
	}

	general, err := g.deposits.GetGeneralDeposit(ctx, userID)
	if err != nil {
		return g.dependency("deposit", userID, auction, err)
	}
	required := g.Required(auction)
	if general != nil && general.Status == models.DepositActive && general.Amount.GreaterThanOrEqual(required) {
		return nil
	}

	return g.deny(userID, auction, amount, biddingerrors.ErrInsufficientDeposit,
		fmt.Sprintf("general deposit below required %s", required.StringFixed(2)))
}

func (g *Gate) deny(userID string, auction models.Auction, amount decimal.Decimal, sentinel error, reason string) error {
	utils.Warn("Bid denied by deposit gate", map[string]any{
		"user_id":    userID,
		"auction_id": auction.AuctionID,
		"amount":     amount.StringFixed(2),
		"reason":     reason,
	})
	return fmt.Errorf("deposit gate: %s: %w", reason, sentinel)
}

func (g *Gate) dependency(name, userID string, auction models.Auction, err error) error {
	utils.Error("Deposit gate dependency failed", map[string]any{
		"user_id":    userID,
		"auction_id": auction.AuctionID,
		"source":     name,
		"error":      err.Error(),
	})
	return fmt.Errorf("deposit gate: %w", biddingerrors.Dependency(name, err))
}
