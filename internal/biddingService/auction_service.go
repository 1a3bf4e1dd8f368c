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
	"pet-auction/internal/lifecycle"
	"pet-auction/internal/locking"
	"pet-auction/internal/models"
	"pet-auction/utils"
)

// errNothingToDo aborts a mutation that turned out to be a no-op
var errNothingToDo = errors.New("nothing to do")

// NewAuction is the seller's listing request
type NewAuction struct {
	SellerID      string
	Title         string
	StartingPrice decimal.Decimal
	MinIncrement  decimal.Decimal
	BuyNowPrice   *decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

// Rules describes the bidding policy in force
type Rules struct {
	MinimumIncrement decimal.Decimal  `json:"minimum_increment"`
	DepositRate      decimal.Decimal  `json:"deposit_rate"`
	ExtendThreshold  string           `json:"extend_threshold"`
	ExtendDuration   string           `json:"extend_duration"`
	ExtendAnchor     extension.Anchor `json:"extend_anchor"`
	MaxExtensions    int              `json:"max_extensions"`
	CancelWindow     string           `json:"cancel_window"`
}

// CreateAuction validates and stores a new listing. A listing without a start
// time opens immediately.
func (s *BiddingService) CreateAuction(ctx context.Context, in NewAuction) (models.Auction, error) {
	now := s.now()
	if in.StartTime.IsZero() {
		in.StartTime = now
	}
	if in.MinIncrement.IsZero() {
		in.MinIncrement = s.cfg.MinimumIncrement
	}
	if err := validateAuction(in); err != nil {
		return models.Auction{}, err
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		SellerID:      in.SellerID,
		Title:         in.Title,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		BuyNowPrice:   in.BuyNowPrice,
		MinIncrement:  in.MinIncrement,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		State:         models.AuctionScheduled,
		Quantity:      1,
		CreatedAt:     now,
	}
	lifecycle.Activate(&auction, now)

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for seller %s: %w", in.SellerID, err)
	}

	utils.Info("Auction created", map[string]any{
		"auction_id":     auction.AuctionID,
		"seller_id":      auction.SellerID,
		"starting_price": auction.StartingPrice.String(),
		"state":          string(auction.State),
		"end_time":       auction.EndTime.Format(time.RFC3339),
	})
	return auction, nil
}

func validateAuction(in NewAuction) error {
	switch {
	case in.SellerID == "":
		return fmt.Errorf("service: %w - missing sellerID", biddingerrors.ErrInvalidAuction)
	case !in.StartingPrice.IsPositive():
		return fmt.Errorf("service: %w - starting price must be positive", biddingerrors.ErrInvalidAuction)
	case in.MinIncrement.IsNegative():
		return fmt.Errorf("service: %w - negative minimum increment", biddingerrors.ErrInvalidAuction)
	case !in.EndTime.After(in.StartTime):
		return fmt.Errorf("service: %w - end time must be after start time", biddingerrors.ErrInvalidAuction)
	case in.BuyNowPrice != nil && !in.BuyNowPrice.GreaterThan(in.StartingPrice):
		return fmt.Errorf("service: %w - buy-now price must exceed starting price", biddingerrors.ErrInvalidAuction)
	}
	return nil
}

// StartAuction activates a Scheduled auction whose start time has passed.
// It reports false when there was nothing to activate.
func (s *BiddingService) StartAuction(ctx context.Context, auctionID string) (bool, error) {
	if auctionID == "" {
		return false, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	unlock, err := locking.AcquireWithin(ctx, s.locker, locking.AuctionKey(auctionID), s.cfg.LockWait, s.cfg.LockTTL)
	if err != nil {
		return false, fmt.Errorf("service: start auction %s: %w", auctionID, err)
	}
	defer unlock()

	now := s.now()
	_, err = s.repo.Mutate(ctx, auctionID, func(rec *models.AuctionRecord) error {
		if !lifecycle.Activate(&rec.Auction, now) {
			return errNothingToDo
		}
		return nil
	})
	if errors.Is(err, errNothingToDo) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service: failed to start auction %s: %w", auctionID, err)
	}

	utils.Info("Auction started", map[string]any{"auction_id": auctionID})
	return true, nil
}

// CloseAuction ends an auction early on the seller's request and settles it
func (s *BiddingService) CloseAuction(ctx context.Context, auctionID, userID string) (models.SettlementResult, error) {
	if auctionID == "" || userID == "" {
		return models.SettlementResult{}, fmt.Errorf("service: %w - missing auctionID or userID", biddingerrors.ErrInvalidAuction)
	}

	snapshot, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.SettlementResult{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if err := lifecycle.AuthorizeClose(snapshot, userID); err != nil {
		utils.Warn("Manual close rejected", map[string]any{"auction_id": auctionID, "user_id": userID})
		return models.SettlementResult{}, fmt.Errorf("service: %w", err)
	}

	closed, err := s.transition(ctx, auctionID, lifecycle.EventManualClose, func(models.Auction, time.Time) error { return nil })
	if err != nil {
		return models.SettlementResult{}, err
	}
	s.closed(ctx, closed)

	return s.settler.Settle(ctx, auctionID)
}

// ExpireAuction closes an auction whose end time has passed and settles it.
// An auction already Closing is only settled, which makes the call safe to
// repeat after a failed settlement.
func (s *BiddingService) ExpireAuction(ctx context.Context, auctionID string) (models.SettlementResult, error) {
	if auctionID == "" {
		return models.SettlementResult{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	closed, err := s.transition(ctx, auctionID, lifecycle.EventExpire, func(a models.Auction, now time.Time) error {
		if !lifecycle.Expired(a, now) {
			return fmt.Errorf("service: auction %s ends at %s: %w", auctionID, a.EndTime.Format(time.RFC3339), biddingerrors.ErrInvalidTransition)
		}
		return nil
	})
	switch {
	case errors.Is(err, errNothingToDo):
	case err != nil:
		return models.SettlementResult{}, err
	default:
		s.closed(ctx, closed)
	}

	return s.settler.Settle(ctx, auctionID)
}

// transition fires a close event under the auction lock. guard runs against
// the activated auction before the event. An auction already past Active
// yields errNothingToDo for expiry and ErrAuctionClosed for other events.
func (s *BiddingService) transition(ctx context.Context, auctionID string, ev lifecycle.Event, guard func(a models.Auction, now time.Time) error) (models.Auction, error) {
	unlock, err := locking.AcquireWithin(ctx, s.locker, locking.AuctionKey(auctionID), s.cfg.LockWait, s.cfg.LockTTL)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: %s auction %s: %w", ev, auctionID, err)
	}
	defer unlock()

	now := s.now()
	committed, err := s.repo.Mutate(ctx, auctionID, func(rec *models.AuctionRecord) error {
		a := &rec.Auction
		lifecycle.Activate(a, now)

		if a.State == models.AuctionClosing || a.State.Terminal() {
			if ev == lifecycle.EventExpire {
				return errNothingToDo
			}
			return fmt.Errorf("service: %w - auction %s is %s", biddingerrors.ErrAuctionClosed, auctionID, a.State)
		}
		if err := guard(*a, now); err != nil {
			return err
		}
		return lifecycle.Fire(a, ev, now)
	})
	if err != nil {
		if errors.Is(err, errNothingToDo) {
			return models.Auction{}, err
		}
		return models.Auction{}, fmt.Errorf("service: failed to %s auction %s: %w", ev, auctionID, err)
	}
	return committed.Auction, nil
}

func (s *BiddingService) closed(ctx context.Context, a models.Auction) {
	utils.Info("Auction closed", map[string]any{
		"auction_id":   a.AuctionID,
		"close_reason": string(a.CloseReason),
		"price":        a.CurrentPrice.String(),
	})
	s.publish(ctx, events.Event{
		Kind:      events.AuctionClosed,
		AuctionID: a.AuctionID,
		Amount:    a.CurrentPrice,
		At:        s.now(),
	})
}

// settle runs settlement after a buy-now. A failure leaves the auction
// Closing for the sweeper to retry.
func (s *BiddingService) settle(ctx context.Context, auctionID string) {
	if _, err := s.settler.Settle(ctx, auctionID); err != nil {
		utils.Error("Settlement after close failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
	}
}

// GetAuction returns the status view of an auction
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (models.AuctionView, error) {
	if auctionID == "" {
		return models.AuctionView{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	rec, err := s.repo.GetRecord(ctx, auctionID)
	if err != nil {
		return models.AuctionView{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return lifecycle.Describe(rec, s.now()), nil
}

// Rules returns the policy applied to every bid
func (s *BiddingService) Rules() Rules {
	return Rules{
		MinimumIncrement: s.cfg.MinimumIncrement,
		DepositRate:      s.cfg.DepositRate,
		ExtendThreshold:  s.cfg.Extension.Threshold.String(),
		ExtendDuration:   s.cfg.Extension.Duration.String(),
		ExtendAnchor:     s.cfg.Extension.Anchor,
		MaxExtensions:    s.cfg.Extension.Max,
		CancelWindow:     s.cfg.CancelWindow.String(),
	}
}
