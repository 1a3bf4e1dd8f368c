package lifecycle

import (
	"fmt"
	"time"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
)

// Event triggers a lifecycle transition
type Event string

const (
	EventStart       Event = "start"
	EventExpire      Event = "expire"
	EventManualClose Event = "manual_close"
	EventBuyNow      Event = "buy_now"
	EventSettle      Event = "settle"
	EventVoid        Event = "void"
)

type edge struct {
	from  models.AuctionState
	event Event
}

var transitions = map[edge]models.AuctionState{
	{models.AuctionScheduled, EventStart}:    models.AuctionActive,
	{models.AuctionActive, EventExpire}:      models.AuctionClosing,
	{models.AuctionActive, EventManualClose}: models.AuctionClosing,
	{models.AuctionActive, EventBuyNow}:      models.AuctionClosing,
	{models.AuctionClosing, EventSettle}:     models.AuctionSettled,
	{models.AuctionClosing, EventVoid}:       models.AuctionVoided,
}

var closeReasons = map[Event]models.CloseReason{
	EventExpire:      models.CloseExpired,
	EventManualClose: models.CloseManual,
	EventBuyNow:      models.CloseBuyNow,
}

// Next returns the state reached from `from` on ev
func Next(from models.AuctionState, ev Event) (models.AuctionState, error) {
	to, ok := transitions[edge{from, ev}]
	if !ok {
		return from, fmt.Errorf("lifecycle: %s on %s: %w", ev, from, biddingerrors.ErrInvalidTransition)
	}
	return to, nil
}

// SettleEvent picks the Closing exit for an auction with or without a leading bid
func SettleEvent(hasLeader bool) Event {
	if hasLeader {
		return EventSettle
	}
	return EventVoid
}

// Fire applies ev to the auction in place, stamping close or settle time
func Fire(a *models.Auction, ev Event, now time.Time) error {
	to, err := Next(a.State, ev)
	if err != nil {
		return fmt.Errorf("auction %s: %w", a.AuctionID, err)
	}

	a.State = to
	if reason, ok := closeReasons[ev]; ok {
		a.CloseReason = reason
		at := now
		a.ClosedAt = &at
	}
	if to.Terminal() {
		at := now
		a.SettledAt = &at
	}
	return nil
}

// Activate moves a due Scheduled auction to Active and reports whether it did
func Activate(a *models.Auction, now time.Time) bool {
	if a.State != models.AuctionScheduled || now.Before(a.StartTime) {
		return false
	}
	return Fire(a, EventStart, now) == nil
}

// Effective is the state observed at now: a Scheduled auction whose start
// has passed reads as Active even before anything persisted the transition
func Effective(a models.Auction, now time.Time) models.AuctionState {
	if a.State == models.AuctionScheduled && !now.Before(a.StartTime) {
		return models.AuctionActive
	}
	return a.State
}

// AcceptsBids reports whether a bid at now may be accepted
func AcceptsBids(a models.Auction, now time.Time) bool {
	return Effective(a, now) == models.AuctionActive && now.Before(a.EndTime)
}

// Expired reports whether an Active auction has reached its end
func Expired(a models.Auction, now time.Time) bool {
	return Effective(a, now) == models.AuctionActive && !now.Before(a.EndTime)
}

// AuthorizeClose allows a manual close only by the seller
func AuthorizeClose(a models.Auction, userID string) error {
	if userID == "" || userID != a.SellerID {
		return fmt.Errorf("lifecycle: close auction %s by %q: %w", a.AuctionID, userID, biddingerrors.ErrNotAuthorized)
	}
	return nil
}

// Describe builds the status view of an auction at now
func Describe(rec models.AuctionRecord, now time.Time) models.AuctionView {
	a := rec.Auction
	a.State = Effective(a, now)

	view := models.AuctionView{
		Auction:    a,
		BidCount:   len(rec.Bids),
		MinimumBid: a.MinimumBid(),
	}
	if lead := rec.Leading(); lead >= 0 {
		view.LeadingBidder = rec.Bids[lead].BidderID
	} else if rec.Order != nil {
		view.LeadingBidder = rec.Order.WinnerID
	}

	switch a.State {
	case models.AuctionScheduled:
		view.RemainingSeconds = int64(a.EndTime.Sub(now) / time.Second)
	case models.AuctionActive:
		if now.Before(a.EndTime) {
			view.RemainingSeconds = int64(a.EndTime.Sub(now) / time.Second)
		} else {
			view.IsEnded = true
		}
	case models.AuctionClosing, models.AuctionSettled, models.AuctionVoided:
		view.IsEnded = true
	}
	return view
}
