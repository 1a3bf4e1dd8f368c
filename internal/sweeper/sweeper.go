package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/utils"
)

// LeaderKey is the lock a sweeper instance must hold to run a pass
const LeaderKey = "sweeper"

// Auctions is the part of the bidding service the sweeper drives
type Auctions interface {
	StartAuction(ctx context.Context, auctionID string) (bool, error)
	ExpireAuction(ctx context.Context, auctionID string) (models.SettlementResult, error)
}

// LeaderLock elects one sweeper across instances. TryAcquire must not block.
type LeaderLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Options tunes a Sweeper. Leader may be nil on a single instance.
type Options struct {
	Interval  time.Duration
	Leader    LeaderLock
	LeaderTTL time.Duration
	Now       func() time.Time
}

// Sweeper activates due auctions, closes expired ones and retries
// settlements left in Closing
type Sweeper struct {
	repo      repository.AuctionDB
	auctions  Auctions
	leader    LeaderLock
	interval  time.Duration
	leaderTTL time.Duration
	now       func() time.Time

	mu sync.Mutex // one pass at a time per process
}

func New(repo repository.AuctionDB, auctions Auctions, opts Options) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.LeaderTTL <= 0 {
		opts.LeaderTTL = opts.Interval
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{
		repo:      repo,
		auctions:  auctions,
		leader:    opts.Leader,
		interval:  opts.Interval,
		leaderTTL: opts.LeaderTTL,
		now:       opts.Now,
	}
}

// Start runs a pass every interval until ctx is done
func (s *Sweeper) Start(ctx context.Context) error {
	utils.Info("Starting expiration sweeper", map[string]any{"interval": s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("Shutting down expiration sweeper", nil)
			return nil
		case <-ticker.C:
			results, err := s.RunOnce(ctx)
			switch {
			case errors.Is(err, biddingerrors.ErrLockHeld):
				utils.Debug("Another instance holds the sweeper lock", nil)
			case err != nil:
				utils.Error("Sweep failed", map[string]any{"error": err.Error()})
			case len(results) > 0:
				utils.Info("Sweep finished", map[string]any{"processed": len(results)})
			}
		}
	}
}

// RunOnce performs one pass and reports every auction it touched. It is the
// same pass the ticker runs and is safe to call while another pass or a
// manual close is in flight.
func (s *Sweeper) RunOnce(ctx context.Context) ([]models.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leader != nil {
		release, err := s.leader.TryAcquire(ctx, LeaderKey, s.leaderTTL)
		if err != nil {
			return nil, fmt.Errorf("sweeper: %w", err)
		}
		defer release()
	}

	now := s.now()
	results := make([]models.SweepResult, 0)

	due, err := s.repo.ListAuctions(ctx, repository.AuctionFilter{
		States:     []models.AuctionState{models.AuctionScheduled},
		StartingBy: now,
	})
	if err != nil {
		return nil, fmt.Errorf("sweeper: failed to list scheduled auctions: %w", err)
	}
	for _, a := range due {
		results = append(results, s.start(ctx, a.AuctionID))
	}

	expired, err := s.repo.ListAuctions(ctx, repository.AuctionFilter{
		States:   []models.AuctionState{models.AuctionActive},
		EndingBy: now,
	})
	if err != nil {
		return results, fmt.Errorf("sweeper: failed to list expired auctions: %w", err)
	}
	stuck, err := s.repo.ListAuctions(ctx, repository.AuctionFilter{
		States: []models.AuctionState{models.AuctionClosing},
	})
	if err != nil {
		return results, fmt.Errorf("sweeper: failed to list closing auctions: %w", err)
	}

	for _, a := range append(expired, stuck...) {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("sweeper: %w", err)
		}
		results = append(results, s.expire(ctx, a.AuctionID))
	}

	return results, nil
}

func (s *Sweeper) start(ctx context.Context, auctionID string) models.SweepResult {
	res := models.SweepResult{AuctionID: auctionID, Outcome: models.OutcomeStarted, At: s.now()}

	started, err := s.auctions.StartAuction(ctx, auctionID)
	switch {
	case err != nil:
		res.Outcome = models.OutcomeFailed
		res.Error = err.Error()
		utils.Error("Failed to start auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
	case !started:
		res.Outcome = models.OutcomeSkipped
	}
	return res
}

func (s *Sweeper) expire(ctx context.Context, auctionID string) models.SweepResult {
	res := models.SweepResult{AuctionID: auctionID, At: s.now()}

	settled, err := s.auctions.ExpireAuction(ctx, auctionID)
	switch {
	case errors.Is(err, biddingerrors.ErrInvalidTransition):
		// extended by a late bid after the listing was read
		res.Outcome = models.OutcomeSkipped
	case err != nil:
		res.Outcome = models.OutcomeFailed
		res.Error = err.Error()
		utils.Error("Failed to settle auction", map[string]any{
			"auction_id": auctionID,
			"code":       biddingerrors.Code(err),
			"error":      err.Error(),
		})
	case settled.AlreadySettled:
		res.Outcome = models.OutcomeSkipped
	default:
		res.Outcome = settled.Outcome
		res.WinnerID = settled.WinnerID
		res.FinalPrice = settled.FinalPrice
		res.OrderID = settled.OrderID
	}
	return res
}
