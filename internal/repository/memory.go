package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB and AutoBidDB.
//
// The mutex only guards the maps. Mutate runs fn outside of it against a copy
// and commits with a version check, so unrelated auctions never wait on each other.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]*models.AuctionRecord // key: auctionID -> value: record
	bidIndex map[string]string                // key: bidID -> value: auctionID
	userBids map[string][]string              // key: userID -> value: bidIDs in insertion order
	autoBids map[string]models.AutoBid        // key: autoBidID -> value: agent
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]*models.AuctionRecord),
		bidIndex: make(map[string]string),
		userBids: make(map[string][]string),
		autoBids: make(map[string]models.AutoBid),
	}
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction models.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w", biddingerrors.ErrInvalidAuction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionExists)
	}
	r.auctions[auction.AuctionID] = &models.AuctionRecord{Auction: auction}
	return nil
}

// GetAuction returns the stored auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return rec.Auction, nil
}

// GetRecord returns a copy of the auction with its bids and winning order
func (r *MemoryRepo) GetRecord(_ context.Context, auctionID string) (models.AuctionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.auctions[auctionID]
	if !ok {
		return models.AuctionRecord{}, fmt.Errorf("get record %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return cloneRecord(rec), nil
}

// ListAuctions returns auctions matching filter ordered by end time
func (r *MemoryRepo) ListAuctions(_ context.Context, filter AuctionFilter) ([]models.Auction, error) {
	r.mu.RLock()
	out := make([]models.Auction, 0)
	for _, rec := range r.auctions {
		if filter.Match(rec.Auction) {
			out = append(out, rec.Auction)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EndTime.Equal(out[j].EndTime) {
			return out[i].AuctionID < out[j].AuctionID
		}
		return out[i].EndTime.Before(out[j].EndTime)
	})
	return out, nil
}

// GetBid returns a bid by id
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionID, ok := r.bidIndex[bidID]
	if !ok {
		return models.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	for _, b := range r.auctions[auctionID].Bids {
		if b.BidID == bidID {
			return b, nil
		}
	}
	return models.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
}

// GetBidsByAuction returns all bids for an auction, newest first
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return newestFirst(rec.Bids), nil
}

// GetBidsByUser returns every bid a user has placed, newest first
func (r *MemoryRepo) GetBidsByUser(_ context.Context, userID string) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.userBids[userID]
	bids := make([]models.Bid, 0, len(ids))
	for _, id := range ids {
		rec := r.auctions[r.bidIndex[id]]
		for _, b := range rec.Bids {
			if b.BidID == id {
				bids = append(bids, b)
				break
			}
		}
	}
	return newestFirst(bids), nil
}

// Mutate applies fn to a copy of the record and swaps it in if no other
// mutation committed in between
func (r *MemoryRepo) Mutate(ctx context.Context, auctionID string, fn MutateFunc) (models.AuctionRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.AuctionRecord{}, fmt.Errorf("mutate auction %s: %w", auctionID, err)
	}

	r.mu.RLock()
	current, ok := r.auctions[auctionID]
	var staged models.AuctionRecord
	if ok {
		staged = cloneRecord(current)
	}
	r.mu.RUnlock()
	if !ok {
		return models.AuctionRecord{}, fmt.Errorf("mutate auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	version := staged.Auction.Version
	if err := fn(&staged); err != nil {
		return models.AuctionRecord{}, err
	}
	staged.Auction.AuctionID = auctionID
	staged.Auction.Version = version + 1

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.auctions[auctionID].Auction.Version != version {
		return models.AuctionRecord{}, fmt.Errorf("mutate auction %s: %w", auctionID, biddingerrors.ErrConcurrentUpdate)
	}
	for _, b := range staged.Bids {
		if _, seen := r.bidIndex[b.BidID]; !seen {
			r.bidIndex[b.BidID] = auctionID
			r.userBids[b.BidderID] = append(r.userBids[b.BidderID], b.BidID)
		}
	}
	committed := staged
	r.auctions[auctionID] = &committed
	return cloneRecord(&committed), nil
}

// SaveAutoBid inserts or replaces an auto-bid agent
func (r *MemoryRepo) SaveAutoBid(_ context.Context, autoBid models.AutoBid) error {
	if autoBid.AutoBidID == "" {
		return fmt.Errorf("save auto-bid: %w", biddingerrors.ErrInvalidAutoBid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoBids[autoBid.AutoBidID] = autoBid
	return nil
}

// GetAutoBid returns an auto-bid agent by id
func (r *MemoryRepo) GetAutoBid(_ context.Context, autoBidID string) (models.AutoBid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ab, ok := r.autoBids[autoBidID]
	if !ok {
		return models.AutoBid{}, fmt.Errorf("get auto-bid %s: %w", autoBidID, biddingerrors.ErrAutoBidNotFound)
	}
	return ab, nil
}

// ListAutoBids returns the agents registered on an auction in creation order
func (r *MemoryRepo) ListAutoBids(_ context.Context, auctionID string) ([]models.AutoBid, error) {
	r.mu.RLock()
	out := make([]models.AutoBid, 0)
	for _, ab := range r.autoBids {
		if ab.AuctionID == auctionID {
			out = append(out, ab)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AutoBidID < out[j].AutoBidID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
