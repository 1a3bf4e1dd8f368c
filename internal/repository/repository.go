package repository

import (
	"context"
	"sort"
	"time"

	"pet-auction/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// MutateFunc edits an auction record in place. Returning an error discards every change.
type MutateFunc func(rec *models.AuctionRecord) error

// AuctionDB defines the auction and bid storage interface.
//
// Mutate is the only write path for an existing auction: the store loads the
// record, hands a private copy to fn and commits the result atomically,
// bumping Auction.Version. It returns the committed record.
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction models.Auction) error
	GetAuction(ctx context.Context, auctionID string) (models.Auction, error)
	GetRecord(ctx context.Context, auctionID string) (models.AuctionRecord, error)
	ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, error)
	GetBid(ctx context.Context, bidID string) (models.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]models.Bid, error)
	GetBidsByUser(ctx context.Context, userID string) ([]models.Bid, error)
	Mutate(ctx context.Context, auctionID string, fn MutateFunc) (models.AuctionRecord, error)
}

// AutoBidDB stores auto-bid agents
type AutoBidDB interface {
	SaveAutoBid(ctx context.Context, autoBid models.AutoBid) error
	GetAutoBid(ctx context.Context, autoBidID string) (models.AutoBid, error)
	ListAutoBids(ctx context.Context, auctionID string) ([]models.AutoBid, error)
}

// AuctionFilter selects auctions for listing. Zero fields match everything.
type AuctionFilter struct {
	States     []models.AuctionState
	StartingBy time.Time // start_time <= StartingBy
	EndingBy   time.Time // end_time <= EndingBy
	SellerID   string
}

// Match reports whether the auction passes the filter
func (f AuctionFilter) Match(a models.Auction) bool {
	if len(f.States) > 0 {
		found := false
		for _, s := range f.States {
			if a.State == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.StartingBy.IsZero() && a.StartTime.After(f.StartingBy) {
		return false
	}
	if !f.EndingBy.IsZero() && a.EndTime.After(f.EndingBy) {
		return false
	}
	if f.SellerID != "" && a.SellerID != f.SellerID {
		return false
	}
	return true
}

func cloneRecord(rec *models.AuctionRecord) models.AuctionRecord {
	out := models.AuctionRecord{
		Auction: rec.Auction,
		Bids:    append([]models.Bid(nil), rec.Bids...),
	}
	if rec.Order != nil {
		order := *rec.Order
		out.Order = &order
	}
	return out
}

// newestFirst orders bids by creation time descending; for equal timestamps
// the later-inserted bid comes first
func newestFirst(bids []models.Bid) []models.Bid {
	out := make([]models.Bid, len(bids))
	for i, b := range bids {
		out[len(bids)-1-i] = b
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
