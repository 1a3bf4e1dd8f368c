package helpers

import "time"

// Request/Response DTOs. Money travels as decimal strings.
type CreateAuctionRequest struct {
	Title         string     `json:"title" binding:"required"`
	StartingPrice string     `json:"starting_price" binding:"required"`
	MinIncrement  string     `json:"min_increment"`
	BuyNowPrice   string     `json:"buy_now_price"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       time.Time  `json:"end_time" binding:"required"`
}

type PlaceBidRequest struct {
	AuctionID string `json:"auction_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	IsAutoBid bool   `json:"is_auto_bid"`
	CreatedAt string `json:"created_at"`
}

type CreateAutoBidRequest struct {
	MaxAmount string `json:"max_amount" binding:"required"`
	Step      string `json:"step"`
}

type DepositRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	AuctionID string `json:"auction_id"`
	Amount    string `json:"amount" binding:"required"`
	Status    string `json:"status"`
}

type SuspensionRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Suspended bool   `json:"suspended"`
}
