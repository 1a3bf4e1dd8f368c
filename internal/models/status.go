package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AuctionState is the lifecycle state of an auction
type AuctionState string

const (
	AuctionScheduled AuctionState = "scheduled"
	AuctionActive    AuctionState = "active"
	AuctionClosing   AuctionState = "closing"
	AuctionSettled   AuctionState = "settled"
	AuctionVoided    AuctionState = "voided"
)

// Terminal reports whether no further transition is possible
func (s AuctionState) Terminal() bool {
	switch s {
	case AuctionSettled, AuctionVoided:
		return true
	case AuctionScheduled, AuctionActive, AuctionClosing:
		return false
	}
	return false
}

func (s AuctionState) Valid() bool {
	switch s {
	case AuctionScheduled, AuctionActive, AuctionClosing, AuctionSettled, AuctionVoided:
		return true
	}
	return false
}

// CloseReason records which trigger won the Active -> Closing transition
type CloseReason string

const (
	CloseNone    CloseReason = ""
	CloseExpired CloseReason = "expired"
	CloseManual  CloseReason = "manual_close"
	CloseBuyNow  CloseReason = "buy_now"
)

// BidStatus is the rank status of a bid
type BidStatus string

const (
	BidLeading   BidStatus = "leading"
	BidOutbid    BidStatus = "outbid"
	BidCancelled BidStatus = "cancelled"
	BidWon       BidStatus = "won"
	BidLost      BidStatus = "lost"
)

// Live reports whether the bid still competes for the auction
func (s BidStatus) Live() bool {
	switch s {
	case BidLeading, BidOutbid:
		return true
	case BidCancelled, BidWon, BidLost:
		return false
	}
	return false
}

func (s BidStatus) Valid() bool {
	switch s {
	case BidLeading, BidOutbid, BidCancelled, BidWon, BidLost:
		return true
	}
	return false
}

// DepositStatus is owned by the external deposit subsystem
type DepositStatus string

const (
	DepositActive    DepositStatus = "active"
	DepositFrozen    DepositStatus = "frozen"
	DepositRefunded  DepositStatus = "refunded"
	DepositForfeited DepositStatus = "forfeited"
)

func (s DepositStatus) Valid() bool {
	switch s {
	case DepositActive, DepositFrozen, DepositRefunded, DepositForfeited:
		return true
	}
	return false
}

// DepositScope tells whether a deposit covers one auction or any auction
type DepositScope string

const (
	ScopeAuction DepositScope = "auction"
	ScopeGeneral DepositScope = "general"
)

// AutoBidState is the state of an auto-bid agent
type AutoBidState string

const (
	AutoBidArmed     AutoBidState = "armed"
	AutoBidBidding   AutoBidState = "bidding"
	AutoBidPaused    AutoBidState = "paused"
	AutoBidExhausted AutoBidState = "exhausted"
	AutoBidCancelled AutoBidState = "cancelled"
	AutoBidCompleted AutoBidState = "completed"
)

// Finished reports whether the agent will never bid again
func (s AutoBidState) Finished() bool {
	switch s {
	case AutoBidExhausted, AutoBidCancelled, AutoBidCompleted:
		return true
	case AutoBidArmed, AutoBidBidding, AutoBidPaused:
		return false
	}
	return false
}

// Outcome is the result of driving an auction through settlement
type Outcome string

const (
	OutcomeSettled Outcome = "settled"
	OutcomeVoided  Outcome = "voided"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
	OutcomeStarted Outcome = "started"
)

// SettlementResult describes a finished (or already finished) settlement
type SettlementResult struct {
	AuctionID      string          `json:"auction_id"`
	Outcome        Outcome         `json:"outcome"`
	WinnerID       string          `json:"winner_id,omitempty"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	OrderID        string          `json:"order_id,omitempty"`
	AlreadySettled bool            `json:"already_settled"`
}

// SweepResult is one line of a sweeper pass report
type SweepResult struct {
	AuctionID  string          `json:"auction_id"`
	Outcome    Outcome         `json:"outcome"`
	WinnerID   string          `json:"winner_id,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price"`
	OrderID    string          `json:"order_id,omitempty"`
	Error      string          `json:"error,omitempty"`
	At         time.Time       `json:"at"`
}

func (r SweepResult) String() string {
	if r.Error != "" {
		return fmt.Sprintf("%s: %s (%s)", r.AuctionID, r.Outcome, r.Error)
	}
	return fmt.Sprintf("%s: %s", r.AuctionID, r.Outcome)
}
