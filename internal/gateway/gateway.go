package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"pet-auction/internal/models"
)

//go:generate mockgen -source=gateway.go -destination=mock_gateway.go -package=gateway

// DepositSource reads deposits owned by the deposit subsystem.
// Both lookups return nil, nil when the user has no such deposit.
type DepositSource interface {
	GetAuctionDeposit(ctx context.Context, userID, auctionID string) (*models.Deposit, error)
	GetGeneralDeposit(ctx context.Context, userID string) (*models.Deposit, error)
}

// AccountSource reports user account standing
type AccountSource interface {
	IsSuspended(ctx context.Context, userID string) (bool, error)
}

// OrderService creates the winning order for an auction.
// Implementations must be idempotent per auction id.
type OrderService interface {
	CreateWinningOrder(ctx context.Context, auctionID, winnerID string, finalPrice decimal.Decimal) (string, error)
}

// Notifier delivers best-effort messages to users
type Notifier interface {
	NotifyWinner(ctx context.Context, auction models.Auction, winnerID string, finalPrice decimal.Decimal) error
	NotifyOutbid(ctx context.Context, auction models.Auction, userID string, newPrice decimal.Decimal) error
	NotifySellerClosed(ctx context.Context, auction models.Auction, outcome models.Outcome) error
}

// DepositWriter records deposits on behalf of the deposit subsystem (admin surface)
type DepositWriter interface {
	PutDeposit(ctx context.Context, deposit models.Deposit) error
}

// AccountWriter changes account standing (admin surface)
type AccountWriter interface {
	SetSuspended(ctx context.Context, userID string, suspended bool) error
}
