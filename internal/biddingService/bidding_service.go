package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/events"
	"pet-auction/internal/extension"
	"pet-auction/internal/gateway"
	"pet-auction/internal/lifecycle"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/internal/repository"
	"pet-auction/utils"
)

//go:generate mockgen -source=bidding_service.go -destination=mock_bidding_service.go -package=bidding

// EligibilityChecker is the deposit gate consulted before a bid is locked in
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, userID string, auction models.Auction, amount decimal.Decimal) error
}

// Settler finishes auctions that reached Closing
type Settler interface {
	Settle(ctx context.Context, auctionID string) (models.SettlementResult, error)
}

// Config holds the bidding rules applied by the service
type Config struct {
	MinimumIncrement decimal.Decimal
	DepositRate      decimal.Decimal
	Extension        extension.Policy
	CancelWindow     time.Duration
	LockWait         time.Duration
	LockTTL          time.Duration
	Now              func() time.Time
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	locker   locking.Locker
	gate     EligibilityChecker
	settler  Settler
	notifier gateway.Notifier
	events   events.Publisher
	cfg      Config
	now      func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, locker locking.Locker, gate EligibilityChecker, settler Settler, notifier gateway.Notifier, publisher events.Publisher, cfg Config) *BiddingService {
	if cfg.LockWait <= 0 {
		cfg.LockWait = 2 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &BiddingService{
		repo:     repo,
		locker:   locker,
		gate:     gate,
		settler:  settler,
		notifier: notifier,
		events:   publisher,
		cfg:      cfg,
		now:      now,
	}
}

// placed describes a committed bid for the follow-up work done outside the lock
type placed struct {
	bid      models.Bid
	auction  models.Auction
	outbid   *models.Bid
	extended extension.Decision
	buyNow   bool
}

// PlaceBid validates and records a user's bid on an auction
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error) {
	return s.placeBid(ctx, auctionID, bidderID, amount, false)
}

// PlaceAutoBid is PlaceBid on behalf of an auto-bid agent
func (s *BiddingService) PlaceAutoBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (models.Bid, error) {
	return s.placeBid(ctx, auctionID, bidderID, amount, true)
}

func (s *BiddingService) placeBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal, auto bool) (models.Bid, error) {
	if err := s.validateBid(auctionID, bidderID, amount); err != nil {
		return models.Bid{}, err
	}

	snapshot, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if !lifecycle.AcceptsBids(snapshot, s.now()) {
		return models.Bid{}, s.reject(snapshot, bidderID, amount, auctionClosed(snapshot, s.now()))
	}
	if snapshot.SellerID == bidderID {
		return models.Bid{}, s.reject(snapshot, bidderID, amount, fmt.Errorf("service: %w - auction %s", biddingerrors.ErrSelfBidNotAllowed, auctionID))
	}
	if err := s.gate.CheckEligibility(ctx, bidderID, snapshot, amount); err != nil {
		return models.Bid{}, fmt.Errorf("service: bidder %s not eligible for auction %s: %w", bidderID, auctionID, err)
	}

	p, err := s.commitBid(ctx, auctionID, bidderID, amount, auto)
	if err != nil {
		return models.Bid{}, s.reject(snapshot, bidderID, amount, err)
	}

	s.afterBid(ctx, p)
	return p.bid, nil
}

// commitBid re-checks the rules that depend on auction state and writes the
// bid while holding the auction lock
func (s *BiddingService) commitBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal, auto bool) (placed, error) {
	unlock, err := locking.AcquireWithin(ctx, s.locker, locking.AuctionKey(auctionID), s.cfg.LockWait, s.cfg.LockTTL)
	if err != nil {
		return placed{}, fmt.Errorf("service: bid on auction %s: %w", auctionID, err)
	}
	defer unlock()

	var p placed
	now := s.now()
	committed, err := s.repo.Mutate(ctx, auctionID, func(rec *models.AuctionRecord) error {
		p = placed{}
		a := &rec.Auction

		lifecycle.Activate(a, now)
		if !lifecycle.AcceptsBids(*a, now) {
			return auctionClosed(*a, now)
		}
		if minimum := a.MinimumBid(); amount.LessThan(minimum) {
			return fmt.Errorf("service: auction %s: %w", auctionID, biddingerrors.NewBidTooLow(amount, minimum))
		}

		if lead := rec.Leading(); lead >= 0 {
			prev := rec.Bids[lead]
			rec.Bids[lead].Status = models.BidOutbid
			rec.Bids[lead].UpdatedAt = now
			p.outbid = &prev
		}

		p.bid = models.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			Status:    models.BidLeading,
			IsAutoBid: auto,
			CreatedAt: now,
			UpdatedAt: now,
		}
		rec.Bids = append(rec.Bids, p.bid)
		a.CurrentPrice = amount

		if a.HasBuyNow() && amount.GreaterThanOrEqual(*a.BuyNowPrice) {
			p.buyNow = true
			return lifecycle.Fire(a, lifecycle.EventBuyNow, now)
		}
		p.extended = s.cfg.Extension.Apply(a, now)
		return nil
	})
	if err != nil {
		return placed{}, err
	}

	p.auction = committed.Auction
	return p, nil
}

// afterBid publishes and notifies once the bid is durable. Nothing here can
// fail the bid.
func (s *BiddingService) afterBid(ctx context.Context, p placed) {
	a := p.auction
	fields := map[string]any{
		"auction_id": a.AuctionID,
		"bid_id":     p.bid.BidID,
		"bidder_id":  p.bid.BidderID,
		"amount":     p.bid.Amount.String(),
		"auto":       p.bid.IsAutoBid,
	}
	if p.extended.Extended {
		fields["extended_to"] = p.extended.NewEnd.Format(time.RFC3339)
		fields["extension_count"] = p.extended.Count
	}
	utils.Info("Bid placed", fields)

	s.publish(ctx, events.Event{
		Kind:      events.BidPlaced,
		AuctionID: a.AuctionID,
		BidID:     p.bid.BidID,
		UserID:    p.bid.BidderID,
		Amount:    p.bid.Amount,
		At:        p.bid.CreatedAt,
	})

	if p.outbid != nil && p.outbid.BidderID != p.bid.BidderID {
		s.publish(ctx, events.Event{
			Kind:         events.BidSuperseded,
			AuctionID:    a.AuctionID,
			BidID:        p.outbid.BidID,
			UserID:       p.bid.BidderID,
			OutbidUserID: p.outbid.BidderID,
			Amount:       p.bid.Amount,
			At:           p.bid.CreatedAt,
		})
		if err := s.notifier.NotifyOutbid(ctx, a, p.outbid.BidderID, p.bid.Amount); err != nil {
			utils.Warn("Outbid notification failed", map[string]any{
				"auction_id": a.AuctionID,
				"user_id":    p.outbid.BidderID,
				"error":      err.Error(),
			})
		}
	}

	if p.buyNow {
		s.closed(ctx, a)
		s.settle(ctx, a.AuctionID)
	}
}

// CancelBid withdraws a bid on behalf of its owner
func (s *BiddingService) CancelBid(ctx context.Context, bidID, userID string) (models.Bid, error) {
	if bidID == "" || userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing bidID or userID", biddingerrors.ErrInvalidBid)
	}

	existing, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
	}
	if existing.BidderID != userID {
		return models.Bid{}, fmt.Errorf("service: %w - bid %s belongs to another user", biddingerrors.ErrNotAuthorized, bidID)
	}

	unlock, err := locking.AcquireWithin(ctx, s.locker, locking.AuctionKey(existing.AuctionID), s.cfg.LockWait, s.cfg.LockTTL)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: cancel bid %s: %w", bidID, err)
	}
	defer unlock()

	var (
		cancelled models.Bid
		promoted  *models.Bid
	)
	now := s.now()
	committed, err := s.repo.Mutate(ctx, existing.AuctionID, func(rec *models.AuctionRecord) error {
		promoted = nil
		idx := -1
		for i := range rec.Bids {
			if rec.Bids[i].BidID == bidID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("service: bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
		}

		b := &rec.Bids[idx]
		if !b.Status.Live() {
			return fmt.Errorf("service: %w - bid %s is %s", biddingerrors.ErrCancellationNotAllowed, bidID, b.Status)
		}
		wasLeading := b.Status == models.BidLeading
		if wasLeading {
			if err := s.leaderMayCancel(rec.Auction, now); err != nil {
				return err
			}
		}

		b.Status = models.BidCancelled
		b.UpdatedAt = now
		cancelled = *b

		if wasLeading {
			promoted = promoteRunnerUp(rec, now)
		}
		return nil
	})
	if err != nil {
		utils.Warn("Bid cancellation rejected", map[string]any{"bid_id": bidID, "user_id": userID, "error": err.Error()})
		return models.Bid{}, err
	}

	fields := map[string]any{
		"auction_id":    committed.Auction.AuctionID,
		"bid_id":        bidID,
		"user_id":       userID,
		"current_price": committed.Auction.CurrentPrice.String(),
	}
	if promoted != nil {
		fields["promoted_bid_id"] = promoted.BidID
	}
	utils.Info("Bid cancelled", fields)

	s.publish(ctx, events.Event{
		Kind:      events.BidCancelled,
		AuctionID: committed.Auction.AuctionID,
		BidID:     bidID,
		UserID:    userID,
		Amount:    cancelled.Amount,
		At:        now,
	})
	return cancelled, nil
}

// leaderMayCancel allows withdrawing the leading bid only while the auction
// is open and outside the final cancel window
func (s *BiddingService) leaderMayCancel(a models.Auction, now time.Time) error {
	if !lifecycle.AcceptsBids(a, now) {
		return fmt.Errorf("service: %w - auction %s is no longer open", biddingerrors.ErrCancellationNotAllowed, a.AuctionID)
	}
	if a.EndTime.Sub(now) <= s.cfg.CancelWindow {
		return fmt.Errorf("service: %w - leading bid inside final %s of auction %s", biddingerrors.ErrCancellationNotAllowed, s.cfg.CancelWindow, a.AuctionID)
	}
	return nil
}

// promoteRunnerUp makes the highest remaining live bid the leader, earliest
// first on ties, and resets the price to it. With no live bid left the price
// falls back to the starting price.
func promoteRunnerUp(rec *models.AuctionRecord, now time.Time) *models.Bid {
	best := -1
	for i, b := range rec.Bids {
		if b.Status != models.BidOutbid {
			continue
		}
		if best < 0 || b.Amount.GreaterThan(rec.Bids[best].Amount) ||
			(b.Amount.Equal(rec.Bids[best].Amount) && b.CreatedAt.Before(rec.Bids[best].CreatedAt)) {
			best = i
		}
	}
	if best < 0 {
		rec.Auction.CurrentPrice = rec.Auction.StartingPrice
		return nil
	}

	rec.Bids[best].Status = models.BidLeading
	rec.Bids[best].UpdatedAt = now
	rec.Auction.CurrentPrice = rec.Bids[best].Amount
	promoted := rec.Bids[best]
	return &promoted
}

// auctionClosed explains why a no longer takes bids. An Active auction past
// its end has not been swept yet, so its stored state would be misleading.
func auctionClosed(a models.Auction, now time.Time) error {
	if lifecycle.Expired(a, now) {
		return fmt.Errorf("service: %w - auction %s ended at %s", biddingerrors.ErrAuctionClosed, a.AuctionID, a.EndTime.Format(time.RFC3339))
	}
	return fmt.Errorf("service: %w - auction %s is %s", biddingerrors.ErrAuctionClosed, a.AuctionID, lifecycle.Effective(a, now))
}

// validateBid checks input validity before any state is read
func (s *BiddingService) validateBid(auctionID, bidderID string, amount decimal.Decimal) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	return nil
}

func (s *BiddingService) reject(a models.Auction, bidderID string, amount decimal.Decimal, err error) error {
	fields := map[string]any{
		"auction_id": a.AuctionID,
		"bidder_id":  bidderID,
		"amount":     amount.String(),
		"code":       biddingerrors.Code(err),
		"error":      err.Error(),
	}
	if minimum, ok := biddingerrors.MinimumFor(err); ok {
		fields["minimum"] = minimum.String()
	}
	if errors.Is(err, biddingerrors.ErrDependency) || biddingerrors.KindOf(err) == biddingerrors.KindUnknown {
		utils.Error("Bid failed", fields)
	} else {
		utils.Warn("Bid rejected", fields)
	}
	return err
}

func (s *BiddingService) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		utils.Warn("Failed to publish event", map[string]any{
			"kind":       string(ev.Kind),
			"auction_id": ev.AuctionID,
			"error":      err.Error(),
		})
	}
}
