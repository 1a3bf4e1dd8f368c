package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/deposit"
	"pet-auction/internal/extension"
	"pet-auction/internal/gateway"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/internal/settlement"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ now atomic.Int64 }

func newClock(t time.Time) *clock {
	c := &clock{}
	c.Set(t)
	return c
}

func (c *clock) Now() time.Time  { return time.Unix(0, c.now.Load()).UTC() }
func (c *clock) Set(t time.Time) { c.now.Store(t.UnixNano()) }

// flakyOrders fails the first n calls
type flakyOrders struct {
	*gateway.MemoryOrders
	failures atomic.Int32
}

func (f *flakyOrders) CreateWinningOrder(ctx context.Context, auctionID, winnerID string, price decimal.Decimal) (string, error) {
	if f.failures.Add(-1) >= 0 {
		return "", errors.New("order service unavailable")
	}
	return f.MemoryOrders.CreateWinningOrder(ctx, auctionID, winnerID, price)
}

type env struct {
	clock   *clock
	repo    *repository.MemoryRepo
	orders  *flakyOrders
	service *bidding.BiddingService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		clock:  newClock(t0),
		repo:   repository.NewMemoryRepo(),
		orders: &flakyOrders{MemoryOrders: gateway.NewMemoryOrders()},
	}
	deposits := gateway.NewMemoryDeposits()
	for _, u := range []string{"u1", "u2"} {
		require.NoError(t, deposits.PutDeposit(context.Background(), models.Deposit{
			UserID: u,
			Amount: decimal.NewFromInt(10_000),
		}))
	}

	locker := locking.NewKeyedLocker()
	notifier := gateway.NewLogNotifier()
	engine := settlement.NewEngine(e.repo, locker, e.orders, notifier, nil, settlement.Options{Now: e.clock.Now})
	gate := deposit.NewGate(deposits, gateway.NewMemoryAccounts(), decimal.RequireFromString("0.10"))
	e.service = bidding.NewBiddingService(e.repo, locker, gate, engine, notifier, nil, bidding.Config{
		MinimumIncrement: decimal.NewFromInt(10),
		Extension:        extension.Policy{Threshold: 5 * time.Minute, Duration: 5 * time.Minute, Max: 3},
		CancelWindow:     5 * time.Minute,
		Now:              e.clock.Now,
	})
	return e
}

func (e *env) sweeper(opts Options) *Sweeper {
	opts.Now = e.clock.Now
	return New(e.repo, e.service, opts)
}

func (e *env) auction(t *testing.T, start, end time.Time) models.Auction {
	t.Helper()
	a, err := e.service.CreateAuction(context.Background(), bidding.NewAuction{
		SellerID:      "seller",
		StartingPrice: decimal.NewFromInt(100),
		StartTime:     start,
		EndTime:       end,
	})
	require.NoError(t, err)
	return a
}

func byAuction(results []models.SweepResult) map[string]models.SweepResult {
	out := make(map[string]models.SweepResult, len(results))
	for _, r := range results {
		out[r.AuctionID] = r
	}
	return out
}

func TestSweeper_SettlesAndVoids(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	empty := e.auction(t, t0, t0.Add(time.Hour))
	sold := e.auction(t, t0, t0.Add(time.Hour))
	open := e.auction(t, t0, t0.Add(3*time.Hour))

	_, err := e.service.PlaceBid(ctx, sold.AuctionID, "u1", decimal.NewFromInt(500))
	require.NoError(t, err)

	e.clock.Set(t0.Add(2 * time.Hour))
	sw := e.sweeper(Options{})

	results, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	got := byAuction(results)
	require.Equal(t, models.OutcomeVoided, got[empty.AuctionID].Outcome)
	require.Equal(t, models.OutcomeSettled, got[sold.AuctionID].Outcome)
	require.Equal(t, "u1", got[sold.AuctionID].WinnerID)
	require.Equal(t, "500", got[sold.AuctionID].FinalPrice.String())
	require.NotEmpty(t, got[sold.AuctionID].OrderID)
	require.NotContains(t, got, open.AuctionID)

	again, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Empty(t, again)
	require.Equal(t, 1, e.orders.Count())

	stored, err := e.repo.GetAuction(ctx, open.AuctionID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionActive, stored.State)
}

func TestSweeper_ActivatesScheduled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	a := e.auction(t, t0.Add(10*time.Minute), t0.Add(time.Hour))
	sw := e.sweeper(Options{})

	results, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Empty(t, results)

	e.clock.Set(t0.Add(10 * time.Minute))
	results, err = sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.OutcomeStarted, results[0].Outcome)

	stored, err := e.repo.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionActive, stored.State)
}

func TestSweeper_RetriesFailedSettlement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	e.orders.failures.Store(1)

	a := e.auction(t, t0, t0.Add(time.Hour))
	_, err := e.service.PlaceBid(ctx, a.AuctionID, "u1", decimal.NewFromInt(200))
	require.NoError(t, err)

	e.clock.Set(t0.Add(time.Hour))
	sw := e.sweeper(Options{})

	results, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.OutcomeFailed, results[0].Outcome)
	require.Contains(t, results[0].Error, "order service unavailable")

	stored, err := e.repo.GetAuction(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionClosing, stored.State)

	results, err = sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.OutcomeSettled, results[0].Outcome)
	require.Equal(t, 1, e.orders.Count())
}

func TestSweeper_RacesManualClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	a := e.auction(t, t0, t0.Add(time.Hour))
	_, err := e.service.PlaceBid(ctx, a.AuctionID, "u1", decimal.NewFromInt(200))
	require.NoError(t, err)
	e.clock.Set(t0.Add(time.Hour))

	sw := e.sweeper(Options{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = sw.RunOnce(ctx)
	}()
	go func() {
		defer wg.Done()
		_, _ = e.service.CloseAuction(ctx, a.AuctionID, "seller")
	}()
	wg.Wait()

	stored, err := e.repo.GetRecord(ctx, a.AuctionID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionSettled, stored.Auction.State)
	require.Equal(t, 1, e.orders.Count())
}

func TestSweeper_LeaderLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	leader := locking.NewRedisLocker(rdb)

	e.auction(t, t0, t0.Add(time.Minute))
	e.clock.Set(t0.Add(time.Minute))

	release, err := leader.TryAcquire(ctx, LeaderKey, time.Minute)
	require.NoError(t, err)

	sw := e.sweeper(Options{Leader: leader, LeaderTTL: time.Minute})
	_, err = sw.RunOnce(ctx)
	require.ErrorIs(t, err, biddingerrors.ErrLockHeld)

	release()
	results, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.OutcomeVoided, results[0].Outcome)
}

func TestSweeper_StartStopsOnCancel(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	a := e.auction(t, t0, t0.Add(time.Minute))
	e.clock.Set(t0.Add(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	sw := e.sweeper(Options{Interval: 10 * time.Millisecond})
	go func() { done <- sw.Start(ctx) }()

	require.Eventually(t, func() bool {
		stored, err := e.repo.GetAuction(context.Background(), a.AuctionID)
		return err == nil && stored.State == models.AuctionVoided
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
