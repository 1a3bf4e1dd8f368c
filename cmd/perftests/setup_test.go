package perftests

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/events"
	"pet-auction/internal/extension"
	"pet-auction/internal/gateway"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/internal/settlement"
	"pet-auction/utils"
)

// openGate admits every bidder so benchmarks measure the ledger, not deposits
type openGate struct{}

func (openGate) CheckEligibility(context.Context, string, models.Auction, decimal.Decimal) error {
	return nil
}

// setupService creates the in-memory stack and lists numAuctions auctions
func setupService(numAuctions int) (*bidding.BiddingService, []string) {
	utils.SetLevel("error")

	repo := repository.NewMemoryRepo()
	locker := locking.NewKeyedLocker()
	notifier := gateway.NewLogNotifier()
	engine := settlement.NewEngine(repo, locker, gateway.NewMemoryOrders(), notifier, events.Discard{}, settlement.Options{})
	svc := bidding.NewBiddingService(repo, locker, openGate{}, engine, notifier, events.Discard{}, bidding.Config{
		MinimumIncrement: decimal.NewFromInt(1),
		DepositRate:      decimal.RequireFromString("0.10"),
		Extension: extension.Policy{
			Threshold: time.Minute,
			Duration:  time.Minute,
			Max:       3,
			Anchor:    extension.AnchorBid,
		},
		CancelWindow: time.Minute,
		LockWait:     5 * time.Second,
	})

	ids := make([]string, 0, numAuctions)
	for i := 0; i < numAuctions; i++ {
		a, err := svc.CreateAuction(context.Background(), bidding.NewAuction{
			SellerID:      "seller",
			Title:         fmt.Sprintf("auction_%d", i),
			StartingPrice: decimal.NewFromInt(50),
			EndTime:       time.Now().Add(24 * time.Hour),
		})
		if err != nil {
			panic(err)
		}
		ids = append(ids, a.AuctionID)
	}
	return svc, ids
}
