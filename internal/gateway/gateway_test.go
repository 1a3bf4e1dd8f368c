package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

type depositStore interface {
	DepositSource
	DepositWriter
}

func TestDeposits(t *testing.T) {
	t.Parallel()

	impls := map[string]func(t *testing.T) depositStore{
		"memory": func(*testing.T) depositStore { return NewMemoryDeposits() },
		"gorm":   func(t *testing.T) depositStore { return NewGormDeposits(openDB(t)) },
	}

	for name, open := range impls {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			deposits := open(t)

			none, err := deposits.GetAuctionDeposit(ctx, "u1", "a1")
			require.NoError(t, err)
			require.Nil(t, none)

			require.NoError(t, deposits.PutDeposit(ctx, models.Deposit{UserID: "u1", AuctionID: "a1", Amount: decimal.NewFromInt(50)}))
			require.NoError(t, deposits.PutDeposit(ctx, models.Deposit{UserID: "u1", Amount: decimal.NewFromInt(500)}))

			got, err := deposits.GetAuctionDeposit(ctx, "u1", "a1")
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, models.ScopeAuction, got.Scope)
			require.Equal(t, models.DepositActive, got.Status)
			require.True(t, got.Amount.Equal(decimal.NewFromInt(50)))

			general, err := deposits.GetGeneralDeposit(ctx, "u1")
			require.NoError(t, err)
			require.NotNil(t, general)
			require.Equal(t, models.ScopeGeneral, general.Scope)
			require.True(t, general.Amount.Equal(decimal.NewFromInt(500)))

			// replacing the auction deposit changes its status in place
			require.NoError(t, deposits.PutDeposit(ctx, models.Deposit{
				UserID: "u1", AuctionID: "a1", Amount: decimal.NewFromInt(50), Status: models.DepositForfeited,
			}))
			got, err = deposits.GetAuctionDeposit(ctx, "u1", "a1")
			require.NoError(t, err)
			require.Equal(t, models.DepositForfeited, got.Status)

			err = deposits.PutDeposit(ctx, models.Deposit{Amount: decimal.NewFromInt(1)})
			require.ErrorIs(t, err, biddingerrors.ErrInvalidDeposit)
			err = deposits.PutDeposit(ctx, models.Deposit{UserID: "u2", Amount: decimal.NewFromInt(1), Status: "lost"})
			require.ErrorIs(t, err, biddingerrors.ErrInvalidDeposit)
		})
	}
}

type accountStore interface {
	AccountSource
	AccountWriter
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	impls := map[string]func(t *testing.T) accountStore{
		"memory": func(*testing.T) accountStore { return NewMemoryAccounts() },
		"gorm":   func(t *testing.T) accountStore { return NewGormAccounts(openDB(t)) },
	}

	for name, open := range impls {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			accounts := open(t)

			suspended, err := accounts.IsSuspended(ctx, "u1")
			require.NoError(t, err)
			require.False(t, suspended)

			require.NoError(t, accounts.SetSuspended(ctx, "u1", true))
			require.NoError(t, accounts.SetSuspended(ctx, "u1", true))
			suspended, err = accounts.IsSuspended(ctx, "u1")
			require.NoError(t, err)
			require.True(t, suspended)

			require.NoError(t, accounts.SetSuspended(ctx, "u1", false))
			suspended, err = accounts.IsSuspended(ctx, "u1")
			require.NoError(t, err)
			require.False(t, suspended)
		})
	}
}

func TestOrders_IdempotentPerAuction(t *testing.T) {
	t.Parallel()

	impls := map[string]func(t *testing.T) OrderService{
		"memory": func(*testing.T) OrderService { return NewMemoryOrders() },
		"gorm":   func(t *testing.T) OrderService { return NewGormOrders(openDB(t)) },
	}

	for name, open := range impls {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			orders := open(t)

			first, err := orders.CreateWinningOrder(ctx, "a1", "u1", decimal.NewFromInt(150))
			require.NoError(t, err)
			require.NotEmpty(t, first)

			again, err := orders.CreateWinningOrder(ctx, "a1", "u1", decimal.NewFromInt(150))
			require.NoError(t, err)
			require.Equal(t, first, again)

			other, err := orders.CreateWinningOrder(ctx, "a2", "u2", decimal.NewFromInt(90))
			require.NoError(t, err)
			require.NotEqual(t, first, other)
		})
	}
}

func TestMemoryOrders_Counters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	orders := NewMemoryOrders()
	_, _ = orders.CreateWinningOrder(ctx, "a1", "u1", decimal.NewFromInt(1))
	_, _ = orders.CreateWinningOrder(ctx, "a1", "u1", decimal.NewFromInt(1))

	require.Equal(t, 1, orders.Count())
	require.Equal(t, 2, orders.Calls())
}

func TestLogNotifier_NeverFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := NewLogNotifier()
	a := models.Auction{AuctionID: "a1", SellerID: "s1"}

	require.NoError(t, n.NotifyWinner(ctx, a, "u1", decimal.NewFromInt(10)))
	require.NoError(t, n.NotifyOutbid(ctx, a, "u2", decimal.NewFromInt(10)))
	require.NoError(t, n.NotifySellerClosed(ctx, a, models.OutcomeVoided))
}
