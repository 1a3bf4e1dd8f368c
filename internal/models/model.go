package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auction represents one item being sold
type Auction struct {
	AuctionID      string           `json:"auction_id"`
	SellerID       string           `json:"seller_id"`
	Title          string           `json:"title"`
	StartingPrice  decimal.Decimal  `json:"starting_price"`
	CurrentPrice   decimal.Decimal  `json:"current_price"`
	BuyNowPrice    *decimal.Decimal `json:"buy_now_price,omitempty"`
	MinIncrement   decimal.Decimal  `json:"min_increment"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	ExtensionCount int              `json:"extension_count"`
	State          AuctionState     `json:"state"`
	CloseReason    CloseReason      `json:"close_reason,omitempty"`
	Quantity       int              `json:"quantity"`
	Version        int64            `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	SettledAt      *time.Time       `json:"settled_at,omitempty"`
}

// HasBuyNow reports whether the auction carries a buy-now price
func (a Auction) HasBuyNow() bool {
	return a.BuyNowPrice != nil && a.BuyNowPrice.IsPositive()
}

// MinimumBid is the lowest amount the next bid may carry
func (a Auction) MinimumBid() decimal.Decimal {
	return a.CurrentPrice.Add(a.MinIncrement)
}

// Bid represents one accepted offer on an auction
type Bid struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BidStatus       `json:"status"`
	IsAutoBid bool            `json:"is_auto_bid"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Deposit represents funds earmarked against a user's potential win.
// An empty AuctionID means the deposit has general scope.
type Deposit struct {
	DepositID string          `json:"deposit_id"`
	UserID    string          `json:"user_id"`
	AuctionID string          `json:"auction_id,omitempty"`
	Scope     DepositScope    `json:"scope"`
	Amount    decimal.Decimal `json:"amount"`
	Status    DepositStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// WinningOrder is the settlement artifact of an auction that had a leading bid
type WinningOrder struct {
	ID         string          `json:"id"`
	AuctionID  string          `json:"auction_id"`
	OrderID    string          `json:"order_id"`
	SellerID   string          `json:"seller_id"`
	WinnerID   string          `json:"winner_id"`
	BidID      string          `json:"bid_id"`
	FinalPrice decimal.Decimal `json:"final_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AutoBid is a user's standing instruction to re-bid up to MaxAmount when outbid
type AutoBid struct {
	AutoBidID string          `json:"autobid_id"`
	AuctionID string          `json:"auction_id"`
	UserID    string          `json:"user_id"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Step      decimal.Decimal `json:"step"`
	State     AutoBidState    `json:"state"`
	LastBidID string          `json:"last_bid_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AuctionRecord is the full mutable state of one auction as seen inside a store mutation
type AuctionRecord struct {
	Auction Auction
	Bids    []Bid
	Order   *WinningOrder
}

// Leading returns the index of the leading bid in Bids, or -1
func (r *AuctionRecord) Leading() int {
	for i := range r.Bids {
		if r.Bids[i].Status == BidLeading {
			return i
		}
	}
	return -1
}

// AuctionView is the read model returned by status queries
type AuctionView struct {
	Auction
	BidCount         int             `json:"bid_count"`
	LeadingBidder    string          `json:"leading_bidder,omitempty"`
	MinimumBid       decimal.Decimal `json:"minimum_bid"`
	RemainingSeconds int64           `json:"remaining_seconds"`
	IsEnded          bool            `json:"is_ended"`
}

// BidStats summarizes a user's bidding history
type BidStats struct {
	UserID        string          `json:"user_id"`
	TotalBids     int             `json:"total_bids"`
	WonAuctions   int             `json:"won_auctions"`
	Leading       int             `json:"leading_auctions"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	SuccessRate   float64         `json:"success_rate"`
}
