package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pet-auction/internal/models"
)

// Kind names an auction event
type Kind string

const (
	BidPlaced      Kind = "bid_placed"
	BidSuperseded  Kind = "bid_superseded"
	BidCancelled   Kind = "bid_cancelled"
	AuctionClosed  Kind = "auction_closed"
	AuctionSettled Kind = "auction_settled"
)

// Event is published after the change it describes committed.
// OutbidUserID names the previous leader on BidSuperseded.
type Event struct {
	Kind         Kind            `json:"kind"`
	AuctionID    string          `json:"auction_id"`
	BidID        string          `json:"bid_id,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
	OutbidUserID string          `json:"outbid_user_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Outcome      models.Outcome  `json:"outcome,omitempty"`
	At           time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus fans events out to subscribers. The channel returned by Subscribe is
// closed once ctx is done.
type Bus interface {
	Publisher
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
