package autobid

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/deposit"
	"pet-auction/internal/events"
	"pet-auction/internal/extension"
	"pet-auction/internal/gateway"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/internal/settlement"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	now      time.Time
	repo     *repository.MemoryRepo
	accounts *gateway.MemoryAccounts
	bus      *events.LocalBus
	service  *bidding.BiddingService
	manager  *Manager
	events   <-chan events.Event
	auction  models.Auction
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{
		now:      t0,
		repo:     repository.NewMemoryRepo(),
		accounts: gateway.NewMemoryAccounts(),
		bus:      events.NewLocalBus(),
	}
	clock := func() time.Time { return h.now }

	deposits := gateway.NewMemoryDeposits()
	for _, u := range []string{"u1", "u2", "u3"} {
		require.NoError(t, deposits.PutDeposit(ctx, models.Deposit{UserID: u, Amount: decimal.NewFromInt(10_000)}))
	}

	locker := locking.NewKeyedLocker()
	notifier := gateway.NewLogNotifier()
	engine := settlement.NewEngine(h.repo, locker, gateway.NewMemoryOrders(), notifier, h.bus, settlement.Options{Now: clock})
	gate := deposit.NewGate(deposits, h.accounts, decimal.RequireFromString("0.10"))
	h.service = bidding.NewBiddingService(h.repo, locker, gate, engine, notifier, h.bus, bidding.Config{
		MinimumIncrement: decimal.NewFromInt(10),
		Extension:        extension.Policy{Threshold: 5 * time.Minute, Duration: 5 * time.Minute, Max: 3},
		CancelWindow:     5 * time.Minute,
		Now:              clock,
	})
	h.manager = NewManager(h.repo, h.service, clock)

	ch, err := h.bus.Subscribe(ctx)
	require.NoError(t, err)
	h.events = ch

	h.auction, err = h.service.CreateAuction(ctx, bidding.NewAuction{
		SellerID:      "seller",
		StartingPrice: decimal.NewFromInt(100),
		MinIncrement:  decimal.NewFromInt(10),
		EndTime:       t0.Add(time.Hour),
	})
	require.NoError(t, err)
	return h
}

// drain feeds every queued event to the manager, including the ones its own
// bids publish, until the bus is quiet
func (h *harness) drain(ctx context.Context) {
	for {
		select {
		case ev := <-h.events:
			h.manager.handle(ctx, ev)
		default:
			return
		}
	}
}

func (h *harness) view(t *testing.T) models.AuctionView {
	t.Helper()
	v, err := h.service.GetAuction(context.Background(), h.auction.AuctionID)
	require.NoError(t, err)
	return v
}

func (h *harness) state(t *testing.T, autoBidID string) models.AutoBidState {
	t.Helper()
	ab, err := h.repo.GetAutoBid(context.Background(), autoBidID)
	require.NoError(t, err)
	return ab.State
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestManager_OpensAndDefends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	ab, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(200), money(10))
	require.NoError(t, err)
	require.Equal(t, models.AutoBidArmed, ab.State)
	require.NotEmpty(t, ab.LastBidID)
	require.Equal(t, "110", h.view(t).CurrentPrice.String())
	h.drain(ctx)

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(150))
	require.NoError(t, err)
	h.drain(ctx)

	v := h.view(t)
	require.Equal(t, "u1", v.LeadingBidder)
	require.Equal(t, "160", v.CurrentPrice.String())

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(195))
	require.NoError(t, err)
	h.drain(ctx)

	v = h.view(t)
	require.Equal(t, "u2", v.LeadingBidder)
	require.Equal(t, models.AutoBidExhausted, h.state(t, ab.AutoBidID))
}

func TestManager_BidsUpToMax(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	ab, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(175), money(50))
	require.NoError(t, err)
	h.drain(ctx)

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(160))
	require.NoError(t, err)
	h.drain(ctx)

	v := h.view(t)
	require.Equal(t, "u1", v.LeadingBidder)
	require.Equal(t, "175", v.CurrentPrice.String())
	require.Equal(t, models.AutoBidArmed, h.state(t, ab.AutoBidID))
}

func TestManager_TwoAgents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	first, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(300), money(10))
	require.NoError(t, err)
	h.drain(ctx)
	second, err := h.manager.Create(ctx, h.auction.AuctionID, "u2", money(250), money(10))
	require.NoError(t, err)
	h.drain(ctx)

	v := h.view(t)
	require.Equal(t, "u1", v.LeadingBidder)
	require.Equal(t, "250", v.CurrentPrice.String())
	require.Equal(t, models.AutoBidArmed, h.state(t, first.AutoBidID))
	require.Equal(t, models.AutoBidExhausted, h.state(t, second.AutoBidID))

	bids, err := h.service.GetBidsForAuction(ctx, h.auction.AuctionID)
	require.NoError(t, err)
	for _, b := range bids {
		require.True(t, b.IsAutoBid)
	}
}

func TestManager_PauseResumeCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	ab, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(300), money(10))
	require.NoError(t, err)
	h.drain(ctx)

	_, err = h.manager.Pause(ctx, ab.AutoBidID, "u2")
	require.ErrorIs(t, err, biddingerrors.ErrNotAuthorized)

	paused, err := h.manager.Pause(ctx, ab.AutoBidID, "u1")
	require.NoError(t, err)
	require.Equal(t, models.AutoBidPaused, paused.State)

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(150))
	require.NoError(t, err)
	h.drain(ctx)
	require.Equal(t, "u2", h.view(t).LeadingBidder)

	resumed, err := h.manager.Resume(ctx, ab.AutoBidID, "u1")
	require.NoError(t, err)
	require.Equal(t, models.AutoBidArmed, resumed.State)
	require.Equal(t, "u1", h.view(t).LeadingBidder)
	require.Equal(t, "160", h.view(t).CurrentPrice.String())

	_, err = h.manager.Resume(ctx, ab.AutoBidID, "u1")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidTransition)

	cancelled, err := h.manager.Cancel(ctx, ab.AutoBidID, "u1")
	require.NoError(t, err)
	require.Equal(t, models.AutoBidCancelled, cancelled.State)

	_, err = h.manager.Cancel(ctx, ab.AutoBidID, "u1")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidTransition)

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(200))
	require.NoError(t, err)
	h.drain(ctx)
	require.Equal(t, "u2", h.view(t).LeadingBidder)
}

func TestManager_CreateRules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	tests := []struct {
		name    string
		user    string
		max     decimal.Decimal
		step    decimal.Decimal
		wantErr error
	}{
		{"seller", "seller", money(500), money(10), biddingerrors.ErrSelfBidNotAllowed},
		{"zero_max", "u1", decimal.Zero, money(10), biddingerrors.ErrInvalidAutoBid},
		{"negative_step", "u1", money(500), money(-1), biddingerrors.ErrInvalidAutoBid},
		{"max_below_minimum", "u1", money(105), money(10), biddingerrors.ErrBidTooLow},
		{"missing_user", "", money(500), money(10), biddingerrors.ErrInvalidAutoBid},
	}
	for _, tt := range tests {
		_, err := h.manager.Create(ctx, h.auction.AuctionID, tt.user, tt.max, tt.step)
		require.ErrorIs(t, err, tt.wantErr, tt.name)
	}

	_, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(500), decimal.Zero)
	require.NoError(t, err)
	_, err = h.manager.Create(ctx, h.auction.AuctionID, "u1", money(900), decimal.Zero)
	require.ErrorIs(t, err, biddingerrors.ErrAutoBidExists)

	_, err = h.manager.Create(ctx, "missing", "u1", money(500), decimal.Zero)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
}

func TestManager_CompletesOnClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	winner, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(300), money(10))
	require.NoError(t, err)
	h.drain(ctx)

	h.now = h.auction.EndTime
	res, err := h.service.ExpireAuction(ctx, h.auction.AuctionID)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeSettled, res.Outcome)
	h.drain(ctx)

	require.Equal(t, models.AutoBidCompleted, h.state(t, winner.AutoBidID))
}

func TestManager_SuspendedOwnerPauses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	ab, err := h.manager.Create(ctx, h.auction.AuctionID, "u1", money(300), money(10))
	require.NoError(t, err)
	h.drain(ctx)

	require.NoError(t, h.accounts.SetSuspended(ctx, "u1", true))
	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(150))
	require.NoError(t, err)
	h.drain(ctx)

	require.Equal(t, models.AutoBidPaused, h.state(t, ab.AutoBidID))
}

func TestManager_Run(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := h.bus.Subscribe(ctx)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- h.manager.Run(ctx, ch) }()

	_, err = h.manager.Create(ctx, h.auction.AuctionID, "u1", money(300), money(10))
	require.NoError(t, err)

	_, err = h.service.PlaceBid(ctx, h.auction.AuctionID, "u2", money(150))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, err := h.service.GetAuction(context.Background(), h.auction.AuctionID)
		return err == nil && v.LeadingBidder == "u1"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop")
	}
}
