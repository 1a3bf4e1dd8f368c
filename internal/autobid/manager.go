package autobid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/events"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/utils"
)

// attempts bounds how often one reaction re-prices after losing a race
const attempts = 3

// Bidder is the part of the bidding service an agent bids through
type Bidder interface {
	PlaceAutoBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error)
	GetAuction(ctx context.Context, auctionID string) (models.AuctionView, error)
}

// Manager runs auto-bid agents. Each agent is a small state machine that
// only wakes up when its owner is outbid or the auction closes.
type Manager struct {
	store  repository.AutoBidDB
	bidder Bidder
	now    func() time.Time

	mu sync.Mutex // serializes reactions so an agent never bids twice for one event
}

func NewManager(store repository.AutoBidDB, bidder Bidder, now func() time.Time) *Manager {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{store: store, bidder: bidder, now: now}
}

// Create registers an agent for userID and places an opening bid unless the
// user already leads. step zero means the auction's minimum increment.
func (m *Manager) Create(ctx context.Context, auctionID, userID string, maxAmount, step decimal.Decimal) (models.AutoBid, error) {
	if auctionID == "" || userID == "" {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - missing auctionID or userID", biddingerrors.ErrInvalidAutoBid)
	}
	if !maxAmount.IsPositive() || step.IsNegative() {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - max must be positive and step non-negative", biddingerrors.ErrInvalidAutoBid)
	}

	view, err := m.bidder.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AutoBid{}, fmt.Errorf("autobid: failed to load auction %s: %w", auctionID, err)
	}
	if view.SellerID == userID {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - auction %s", biddingerrors.ErrSelfBidNotAllowed, auctionID)
	}
	if view.State == models.AuctionScheduled {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - auction %s has not started", biddingerrors.ErrAuctionNotActive, auctionID)
	}
	if view.IsEnded || view.State != models.AuctionActive {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - auction %s is %s", biddingerrors.ErrAuctionClosed, auctionID, view.State)
	}
	if view.LeadingBidder != userID && maxAmount.LessThan(view.MinimumBid) {
		return models.AutoBid{}, fmt.Errorf("autobid: auction %s: %w", auctionID, biddingerrors.NewBidTooLow(maxAmount, view.MinimumBid))
	}

	m.mu.Lock()
	existing, err := m.store.ListAutoBids(ctx, auctionID)
	if err != nil {
		m.mu.Unlock()
		return models.AutoBid{}, fmt.Errorf("autobid: failed to list agents for auction %s: %w", auctionID, err)
	}
	for _, ab := range existing {
		if ab.UserID == userID && !ab.State.Finished() {
			m.mu.Unlock()
			return models.AutoBid{}, fmt.Errorf("autobid: %w - %s", biddingerrors.ErrAutoBidExists, ab.AutoBidID)
		}
	}

	now := m.now()
	ab := models.AutoBid{
		AutoBidID: utils.GeneratePrefixedID("ab"),
		AuctionID: auctionID,
		UserID:    userID,
		MaxAmount: maxAmount,
		Step:      step,
		State:     models.AutoBidArmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = m.store.SaveAutoBid(ctx, ab)
	m.mu.Unlock()
	if err != nil {
		return models.AutoBid{}, fmt.Errorf("autobid: failed to save agent: %w", err)
	}

	utils.Info("Auto-bid armed", map[string]any{
		"autobid_id": ab.AutoBidID,
		"auction_id": auctionID,
		"user_id":    userID,
		"max_amount": maxAmount.String(),
	})

	return m.react(ctx, ab.AutoBidID)
}

// Pause stops an agent from reacting until resumed
func (m *Manager) Pause(ctx context.Context, autoBidID, userID string) (models.AutoBid, error) {
	return m.change(ctx, autoBidID, userID, "pause", func(ab *models.AutoBid) error {
		if ab.State != models.AutoBidArmed && ab.State != models.AutoBidBidding {
			return fmt.Errorf("autobid: pause %s agent: %w", ab.State, biddingerrors.ErrInvalidTransition)
		}
		ab.State = models.AutoBidPaused
		return nil
	})
}

// Resume re-arms a paused agent and bids at once if its owner was outbid meanwhile
func (m *Manager) Resume(ctx context.Context, autoBidID, userID string) (models.AutoBid, error) {
	if _, err := m.change(ctx, autoBidID, userID, "resume", func(ab *models.AutoBid) error {
		if ab.State != models.AutoBidPaused {
			return fmt.Errorf("autobid: resume %s agent: %w", ab.State, biddingerrors.ErrInvalidTransition)
		}
		ab.State = models.AutoBidArmed
		return nil
	}); err != nil {
		return models.AutoBid{}, err
	}
	return m.react(ctx, autoBidID)
}

// Cancel retires an agent for good
func (m *Manager) Cancel(ctx context.Context, autoBidID, userID string) (models.AutoBid, error) {
	return m.change(ctx, autoBidID, userID, "cancel", func(ab *models.AutoBid) error {
		if ab.State.Finished() {
			return fmt.Errorf("autobid: cancel %s agent: %w", ab.State, biddingerrors.ErrInvalidTransition)
		}
		ab.State = models.AutoBidCancelled
		return nil
	})
}

func (m *Manager) change(ctx context.Context, autoBidID, userID, action string, fn func(ab *models.AutoBid) error) (models.AutoBid, error) {
	if autoBidID == "" || userID == "" {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - missing autoBidID or userID", biddingerrors.ErrInvalidAutoBid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ab, err := m.store.GetAutoBid(ctx, autoBidID)
	if err != nil {
		return models.AutoBid{}, fmt.Errorf("autobid: %w", err)
	}
	if ab.UserID != userID {
		return models.AutoBid{}, fmt.Errorf("autobid: %w - agent %s belongs to another user", biddingerrors.ErrNotAuthorized, autoBidID)
	}
	if err := fn(&ab); err != nil {
		return models.AutoBid{}, err
	}
	ab.UpdatedAt = m.now()
	if err := m.store.SaveAutoBid(ctx, ab); err != nil {
		return models.AutoBid{}, fmt.Errorf("autobid: failed to save agent %s: %w", autoBidID, err)
	}

	utils.Info("Auto-bid "+action, map[string]any{"autobid_id": autoBidID, "state": string(ab.State)})
	return ab, nil
}

// Run consumes events from a bus subscription until the channel closes
func (m *Manager) Run(ctx context.Context, ch <-chan events.Event) error {
	utils.Info("Auto-bid manager started", nil)
	for ev := range ch {
		m.handle(ctx, ev)
	}
	utils.Info("Auto-bid manager stopped", nil)
	return nil
}

func (m *Manager) handle(ctx context.Context, ev events.Event) {
	switch ev.Kind {
	case events.BidSuperseded:
		agents, err := m.store.ListAutoBids(ctx, ev.AuctionID)
		if err != nil {
			utils.Error("Failed to list auto-bids", map[string]any{"auction_id": ev.AuctionID, "error": err.Error()})
			return
		}
		for _, ab := range agents {
			if ab.UserID == ev.OutbidUserID && ab.State == models.AutoBidArmed {
				if _, err := m.react(ctx, ab.AutoBidID); err != nil {
					utils.Error("Auto-bid reaction failed", map[string]any{"autobid_id": ab.AutoBidID, "error": err.Error()})
				}
			}
		}
	case events.AuctionClosed, events.AuctionSettled:
		m.complete(ctx, ev.AuctionID)
	case events.BidPlaced, events.BidCancelled:
	}
}

// complete retires every live agent of a closed auction
func (m *Manager) complete(ctx context.Context, auctionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agents, err := m.store.ListAutoBids(ctx, auctionID)
	if err != nil {
		utils.Error("Failed to list auto-bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}
	for _, ab := range agents {
		if ab.State.Finished() {
			continue
		}
		ab.State = models.AutoBidCompleted
		ab.UpdatedAt = m.now()
		if err := m.store.SaveAutoBid(ctx, ab); err != nil {
			utils.Error("Failed to complete auto-bid", map[string]any{"autobid_id": ab.AutoBidID, "error": err.Error()})
		}
	}
}

// react drives one Armed -> Bidding -> outcome cycle for an agent
func (m *Manager) react(ctx context.Context, autoBidID string) (models.AutoBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ab, err := m.store.GetAutoBid(ctx, autoBidID)
	if err != nil {
		return models.AutoBid{}, fmt.Errorf("autobid: %w", err)
	}
	if ab.State != models.AutoBidArmed {
		return ab, nil
	}
	if err := m.save(ctx, &ab, models.AutoBidBidding); err != nil {
		return models.AutoBid{}, err
	}

	next := m.bid(ctx, &ab)
	if err := m.save(ctx, &ab, next); err != nil {
		return models.AutoBid{}, err
	}
	return ab, nil
}

// bid places at most attempts bids and returns the state the agent lands in
func (m *Manager) bid(ctx context.Context, ab *models.AutoBid) models.AutoBidState {
	var minimum decimal.Decimal
	for i := 0; i < attempts; i++ {
		view, err := m.bidder.GetAuction(ctx, ab.AuctionID)
		if err != nil {
			m.warn(ab, "load auction", err)
			return models.AutoBidArmed
		}
		if view.IsEnded || view.State != models.AuctionActive {
			return models.AutoBidCompleted
		}
		if view.LeadingBidder == ab.UserID {
			return models.AutoBidArmed
		}

		if view.MinimumBid.GreaterThan(minimum) {
			minimum = view.MinimumBid
		}
		amount, ok := nextAmount(view, *ab, minimum)
		if !ok {
			utils.Info("Auto-bid exhausted", map[string]any{
				"autobid_id": ab.AutoBidID,
				"max_amount": ab.MaxAmount.String(),
				"minimum":    minimum.String(),
			})
			return models.AutoBidExhausted
		}

		placed, err := m.bidder.PlaceAutoBid(ctx, ab.AuctionID, ab.UserID, amount)
		if err == nil {
			ab.LastBidID = placed.BidID
			return models.AutoBidArmed
		}

		switch {
		case errors.Is(err, biddingerrors.ErrBidTooLow):
			if raised, ok := biddingerrors.MinimumFor(err); ok {
				minimum = raised
			}
			continue
		case errors.Is(err, biddingerrors.ErrAuctionClosed):
			return models.AutoBidCompleted
		case biddingerrors.Retryable(err), biddingerrors.KindOf(err) == biddingerrors.KindDependencyFailure:
			m.warn(ab, "bid", err)
			return models.AutoBidArmed
		default:
			// deposit or account problems need the owner to act
			m.warn(ab, "bid", err)
			return models.AutoBidPaused
		}
	}
	return models.AutoBidArmed
}

// nextAmount is the current price plus the agent's step, capped at its
// maximum, and never below minimum
func nextAmount(view models.AuctionView, ab models.AutoBid, minimum decimal.Decimal) (decimal.Decimal, bool) {
	amount := view.CurrentPrice.Add(ab.Step)
	if amount.LessThan(minimum) {
		amount = minimum
	}
	if amount.GreaterThan(ab.MaxAmount) {
		amount = ab.MaxAmount
	}
	return amount, !amount.LessThan(minimum)
}

func (m *Manager) save(ctx context.Context, ab *models.AutoBid, state models.AutoBidState) error {
	ab.State = state
	ab.UpdatedAt = m.now()
	if err := m.store.SaveAutoBid(ctx, *ab); err != nil {
		return fmt.Errorf("autobid: failed to save agent %s: %w", ab.AutoBidID, err)
	}
	return nil
}

func (m *Manager) warn(ab *models.AutoBid, action string, err error) {
	utils.Warn("Auto-bid "+action+" failed", map[string]any{
		"autobid_id": ab.AutoBidID,
		"auction_id": ab.AuctionID,
		"user_id":    ab.UserID,
		"code":       biddingerrors.Code(err),
		"error":      err.Error(),
	})
}
