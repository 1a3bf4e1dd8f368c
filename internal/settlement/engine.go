package settlement

import (
	"context"
	"fmt"
	"time"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/events"
	"pet-auction/internal/gateway"
	"pet-auction/internal/lifecycle"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/utils"
)

// Options tunes an Engine. Zero values fall back to defaults.
type Options struct {
	LockWait time.Duration
	LockTTL  time.Duration
	Now      func() time.Time
}

// Engine drives Closing auctions to Settled or Voided
type Engine struct {
	repo     repository.AuctionDB
	locker   locking.Locker
	orders   gateway.OrderService
	notifier gateway.Notifier
	events   events.Publisher
	lockWait time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewEngine creates a settlement engine
func NewEngine(repo repository.AuctionDB, locker locking.Locker, orders gateway.OrderService, notifier gateway.Notifier, publisher events.Publisher, opts Options) *Engine {
	if opts.LockWait <= 0 {
		opts.LockWait = 2 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Engine{
		repo:     repo,
		locker:   locker,
		orders:   orders,
		notifier: notifier,
		events:   publisher,
		lockWait: opts.LockWait,
		lockTTL:  opts.LockTTL,
		now:      opts.Now,
	}
}

// Settle finishes a Closing auction. Calling it again on a settled or
// voided auction returns the stored outcome with AlreadySettled set and
// never creates a second order.
func (e *Engine) Settle(ctx context.Context, auctionID string) (models.SettlementResult, error) {
	if auctionID == "" {
		return models.SettlementResult{}, fmt.Errorf("settlement: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	result, committed, err := e.settleLocked(ctx, auctionID)
	if err != nil {
		return models.SettlementResult{}, err
	}
	if committed != nil {
		e.afterCommit(ctx, *committed, result)
	}
	return result, nil
}

// settleLocked does the state work under the auction lock. committed is nil
// when the auction was already terminal and nothing changed.
func (e *Engine) settleLocked(ctx context.Context, auctionID string) (models.SettlementResult, *models.AuctionRecord, error) {
	unlock, err := locking.AcquireWithin(ctx, e.locker, locking.AuctionKey(auctionID), e.lockWait, e.lockTTL)
	if err != nil {
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: auction %s: %w", auctionID, err)
	}
	defer unlock()

	rec, err := e.repo.GetRecord(ctx, auctionID)
	if err != nil {
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: failed to load auction %s: %w", auctionID, err)
	}

	switch rec.Auction.State {
	case models.AuctionSettled, models.AuctionVoided:
		return storedResult(rec), nil, nil
	case models.AuctionClosing:
	case models.AuctionScheduled, models.AuctionActive:
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: auction %s is %s: %w", auctionID, rec.Auction.State, biddingerrors.ErrInvalidTransition)
	}

	lead := rec.Leading()
	if lead < 0 {
		return e.void(ctx, auctionID)
	}
	return e.award(ctx, rec, rec.Bids[lead])
}

func (e *Engine) void(ctx context.Context, auctionID string) (models.SettlementResult, *models.AuctionRecord, error) {
	now := e.now()
	committed, err := e.repo.Mutate(ctx, auctionID, func(rec *models.AuctionRecord) error {
		if rec.Leading() >= 0 {
			return fmt.Errorf("settlement: auction %s gained a leader: %w", auctionID, biddingerrors.ErrConcurrentUpdate)
		}
		closeLiveBids(rec, "", now)
		return lifecycle.Fire(&rec.Auction, lifecycle.EventVoid, now)
	})
	if err != nil {
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: failed to void auction %s: %w", auctionID, err)
	}

	utils.Info("Auction voided", map[string]any{
		"auction_id":   auctionID,
		"close_reason": string(committed.Auction.CloseReason),
	})

	result := models.SettlementResult{
		AuctionID:  auctionID,
		Outcome:    models.OutcomeVoided,
		FinalPrice: committed.Auction.CurrentPrice,
	}
	return result, &committed, nil
}

func (e *Engine) award(ctx context.Context, rec models.AuctionRecord, leader models.Bid) (models.SettlementResult, *models.AuctionRecord, error) {
	auctionID := rec.Auction.AuctionID

	// the order subsystem is idempotent per auction, so a retry after a crash
	// between this call and the commit gets the same order back
	orderID, err := e.orders.CreateWinningOrder(ctx, auctionID, leader.BidderID, leader.Amount)
	if err != nil {
		utils.Error("Winning order creation failed, auction stays closing", map[string]any{
			"auction_id": auctionID,
			"winner_id":  leader.BidderID,
			"amount":     leader.Amount.String(),
			"error":      err.Error(),
		})
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: auction %s: %w", auctionID, biddingerrors.Dependency("order", err))
	}

	now := e.now()
	committed, err := e.repo.Mutate(ctx, auctionID, func(r *models.AuctionRecord) error {
		lead := r.Leading()
		if lead < 0 || r.Bids[lead].BidID != leader.BidID {
			return fmt.Errorf("settlement: leader of auction %s changed: %w", auctionID, biddingerrors.ErrConcurrentUpdate)
		}
		closeLiveBids(r, leader.BidID, now)
		if r.Order == nil {
			r.Order = &models.WinningOrder{
				ID:         utils.GeneratePrefixedID("wo"),
				AuctionID:  auctionID,
				OrderID:    orderID,
				SellerID:   r.Auction.SellerID,
				WinnerID:   leader.BidderID,
				BidID:      leader.BidID,
				FinalPrice: leader.Amount,
				CreatedAt:  now,
			}
		}
		return lifecycle.Fire(&r.Auction, lifecycle.EventSettle, now)
	})
	if err != nil {
		return models.SettlementResult{}, nil, fmt.Errorf("settlement: failed to settle auction %s: %w", auctionID, err)
	}

	utils.Info("Auction settled", map[string]any{
		"auction_id": auctionID,
		"winner_id":  leader.BidderID,
		"price":      leader.Amount.String(),
		"order_id":   orderID,
	})

	result := storedResult(committed)
	result.AlreadySettled = false
	return result, &committed, nil
}

// afterCommit publishes and notifies once the auction lock is released.
// Failures here never undo a settlement.
func (e *Engine) afterCommit(ctx context.Context, rec models.AuctionRecord, result models.SettlementResult) {
	a := rec.Auction

	if err := e.events.Publish(ctx, events.Event{
		Kind:      events.AuctionSettled,
		AuctionID: a.AuctionID,
		UserID:    result.WinnerID,
		Amount:    result.FinalPrice,
		Outcome:   result.Outcome,
		At:        e.now(),
	}); err != nil {
		utils.Warn("Failed to publish settlement event", map[string]any{"auction_id": a.AuctionID, "error": err.Error()})
	}

	if result.Outcome == models.OutcomeSettled {
		if err := e.notifier.NotifyWinner(ctx, a, result.WinnerID, result.FinalPrice); err != nil {
			notifyFailed("winner", a.AuctionID, result.WinnerID, err)
		}
		notified := map[string]bool{result.WinnerID: true}
		for _, b := range rec.Bids {
			if b.Status != models.BidLost || notified[b.BidderID] {
				continue
			}
			notified[b.BidderID] = true
			if err := e.notifier.NotifyOutbid(ctx, a, b.BidderID, result.FinalPrice); err != nil {
				notifyFailed("loser", a.AuctionID, b.BidderID, err)
			}
		}
	}

	if err := e.notifier.NotifySellerClosed(ctx, a, result.Outcome); err != nil {
		notifyFailed("seller", a.AuctionID, a.SellerID, err)
	}
}

func notifyFailed(target, auctionID, userID string, err error) {
	utils.Warn("Notification failed", map[string]any{
		"target":     target,
		"auction_id": auctionID,
		"user_id":    userID,
		"error":      err.Error(),
	})
}

// closeLiveBids marks winnerBidID Won and every other live bid Lost
func closeLiveBids(rec *models.AuctionRecord, winnerBidID string, now time.Time) {
	for i := range rec.Bids {
		b := &rec.Bids[i]
		if !b.Status.Live() {
			continue
		}
		if b.BidID == winnerBidID {
			b.Status = models.BidWon
		} else {
			b.Status = models.BidLost
		}
		b.UpdatedAt = now
	}
}

func storedResult(rec models.AuctionRecord) models.SettlementResult {
	result := models.SettlementResult{
		AuctionID:      rec.Auction.AuctionID,
		FinalPrice:     rec.Auction.CurrentPrice,
		AlreadySettled: true,
	}
	switch {
	case rec.Auction.State == models.AuctionSettled && rec.Order != nil:
		result.Outcome = models.OutcomeSettled
		result.WinnerID = rec.Order.WinnerID
		result.FinalPrice = rec.Order.FinalPrice
		result.OrderID = rec.Order.OrderID
	case rec.Auction.State == models.AuctionSettled:
		result.Outcome = models.OutcomeSettled
	default:
		result.Outcome = models.OutcomeVoided
	}
	return result
}
