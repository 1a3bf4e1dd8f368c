package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"pet-auction/internal/models"
	"pet-auction/utils"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) NotifyWinner(_ context.Context, auction models.Auction, winnerID string, finalPrice decimal.Decimal) error {
	utils.Info("Notify winner", map[string]any{
		"auction_id":  auction.AuctionID,
		"user_id":     winnerID,
		"final_price": finalPrice.StringFixed(2),
	})
	return nil
}

func (LogNotifier) NotifyOutbid(_ context.Context, auction models.Auction, userID string, newPrice decimal.Decimal) error {
	utils.Info("Notify outbid", map[string]any{
		"auction_id":    auction.AuctionID,
		"user_id":       userID,
		"current_price": newPrice.StringFixed(2),
	})
	return nil
}

func (LogNotifier) NotifySellerClosed(_ context.Context, auction models.Auction, outcome models.Outcome) error {
	utils.Info("Notify seller", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  auction.SellerID,
		"outcome":    string(outcome),
	})
	return nil
}

var _ Notifier = LogNotifier{}
