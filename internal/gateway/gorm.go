package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pet-auction/internal/models"
	"pet-auction/utils"
)

type depositRow struct {
	DepositID string          `gorm:"primaryKey;size:64"`
	UserID    string          `gorm:"uniqueIndex:idx_deposit_user_auction;size:64;not null"`
	AuctionID string          `gorm:"uniqueIndex:idx_deposit_user_auction;size:64"`
	Scope     string          `gorm:"size:16;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status    string          `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (depositRow) TableName() string { return "deposits" }

type suspensionRow struct {
	UserID    string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
}

func (suspensionRow) TableName() string { return "account_suspensions" }

type orderRequestRow struct {
	AuctionID  string          `gorm:"primaryKey;size:64"`
	OrderID    string          `gorm:"uniqueIndex;size:64;not null"`
	WinnerID   string          `gorm:"size:64;not null"`
	FinalPrice decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt  time.Time
}

func (orderRequestRow) TableName() string { return "order_requests" }

// Migrate creates the collaborator tables used by the gorm gateways
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&depositRow{}, &suspensionRow{}, &orderRequestRow{}); err != nil {
		return fmt.Errorf("failed to run gateway migrations: %w", err)
	}
	return nil
}

// GormDeposits reads and writes deposits in the shared database
type GormDeposits struct {
	db *gorm.DB
}

func NewGormDeposits(db *gorm.DB) *GormDeposits {
	return &GormDeposits{db: db}
}

func (g *GormDeposits) GetAuctionDeposit(ctx context.Context, userID, auctionID string) (*models.Deposit, error) {
	return g.find(ctx, userID, auctionID)
}

func (g *GormDeposits) GetGeneralDeposit(ctx context.Context, userID string) (*models.Deposit, error) {
	return g.find(ctx, userID, "")
}

func (g *GormDeposits) find(ctx context.Context, userID, auctionID string) (*models.Deposit, error) {
	var row depositRow
	err := g.db.WithContext(ctx).Where("user_id = ? AND auction_id = ?", userID, auctionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find deposit for user %s: %w", userID, err)
	}
	return &models.Deposit{
		DepositID: row.DepositID,
		UserID:    row.UserID,
		AuctionID: row.AuctionID,
		Scope:     models.DepositScope(row.Scope),
		Amount:    row.Amount,
		Status:    models.DepositStatus(row.Status),
		CreatedAt: row.CreatedAt,
	}, nil
}

// PutDeposit upserts on (user, auction)
func (g *GormDeposits) PutDeposit(ctx context.Context, deposit models.Deposit) error {
	deposit, err := normalizeDeposit(deposit)
	if err != nil {
		return err
	}
	row := depositRow{
		DepositID: deposit.DepositID,
		UserID:    deposit.UserID,
		AuctionID: deposit.AuctionID,
		Scope:     string(deposit.Scope),
		Amount:    deposit.Amount,
		Status:    string(deposit.Status),
		CreatedAt: deposit.CreatedAt,
	}
	err = g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "auction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("put deposit for user %s: %w", deposit.UserID, err)
	}
	return nil
}

// GormAccounts stores suspensions in the shared database
type GormAccounts struct {
	db *gorm.DB
}

func NewGormAccounts(db *gorm.DB) *GormAccounts {
	return &GormAccounts{db: db}
}

func (g *GormAccounts) IsSuspended(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&suspensionRow{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check suspension for user %s: %w", userID, err)
	}
	return count > 0, nil
}

func (g *GormAccounts) SetSuspended(ctx context.Context, userID string, suspended bool) error {
	db := g.db.WithContext(ctx)
	var err error
	if suspended {
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&suspensionRow{UserID: userID}).Error
	} else {
		err = db.Delete(&suspensionRow{}, "user_id = ?", userID).Error
	}
	if err != nil {
		return fmt.Errorf("set suspension for user %s: %w", userID, err)
	}
	return nil
}

// GormOrders records order requests keyed by auction so retries return the first order id
type GormOrders struct {
	db *gorm.DB
}

func NewGormOrders(db *gorm.DB) *GormOrders {
	return &GormOrders{db: db}
}

func (g *GormOrders) CreateWinningOrder(ctx context.Context, auctionID, winnerID string, finalPrice decimal.Decimal) (string, error) {
	row := orderRequestRow{
		AuctionID:  auctionID,
		OrderID:    utils.GeneratePrefixedID("ord"),
		WinnerID:   winnerID,
		FinalPrice: finalPrice,
	}

	db := g.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create order for auction %s: %w", auctionID, err)
	}

	var stored orderRequestRow
	if err := db.First(&stored, "auction_id = ?", auctionID).Error; err != nil {
		return "", fmt.Errorf("create order for auction %s: %w", auctionID, err)
	}
	return stored.OrderID, nil
}

var (
	_ DepositSource = (*GormDeposits)(nil)
	_ DepositWriter = (*GormDeposits)(nil)
	_ AccountSource = (*GormAccounts)(nil)
	_ AccountWriter = (*GormAccounts)(nil)
	_ OrderService  = (*GormOrders)(nil)
)
