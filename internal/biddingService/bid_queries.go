package bidding

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
)

// GetBidsForAuction returns all bids for a specific auction, newest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the leading bid of an open auction or the won bid of a settled one
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	rec, err := s.repo.GetRecord(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	if lead := rec.Leading(); lead >= 0 {
		return rec.Bids[lead], nil
	}
	for _, b := range rec.Bids {
		if b.Status == models.BidWon {
			return b, nil
		}
	}

	return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, biddingerrors.ErrNoBids)
}

// GetBidsByUser returns every bid a user has placed, newest first
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", userID, err)
	}

	return bids, nil
}

// GetWinsByUser returns the bids a user won, newest first
func (s *BiddingService) GetWinsByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	bids, err := s.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	wins := make([]models.Bid, 0)
	for _, b := range bids {
		if b.Status == models.BidWon {
			wins = append(wins, b)
		}
	}
	return wins, nil
}

// GetUserStats summarizes a user's bidding history. SuccessRate is won bids
// over all bids placed.
func (s *BiddingService) GetUserStats(ctx context.Context, userID string) (models.BidStats, error) {
	bids, err := s.GetBidsByUser(ctx, userID)
	if err != nil {
		return models.BidStats{}, err
	}

	stats := models.BidStats{
		UserID:        userID,
		TotalBids:     len(bids),
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
	}
	for _, b := range bids {
		stats.TotalAmount = stats.TotalAmount.Add(b.Amount)
		switch b.Status {
		case models.BidWon:
			stats.WonAuctions++
		case models.BidLeading:
			stats.Leading++
		case models.BidOutbid, models.BidCancelled, models.BidLost:
		}
	}
	if stats.TotalBids > 0 {
		stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(stats.TotalBids))).Round(2)
		stats.SuccessRate = float64(stats.WonAuctions) / float64(stats.TotalBids)
	}
	return stats, nil
}
