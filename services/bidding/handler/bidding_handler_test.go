package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pet-auction/internal/auth"
	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
	"pet-auction/services/bidding/helpers"
)

// decimalEq matches decimal arguments by value rather than representation
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "is decimal " + m.want.String() }

func amount(s string) gomock.Matcher { return decimalEq{decimal.RequireFromString(s)} }

// testRouter authenticates every request as userID with role
func testRouter(userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(helpers.UserIDKey, userID)
		c.Set(helpers.RoleKey, role)
		c.Next()
	})
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

// Test RecordBidHandler
func TestRecordBidHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		validate       func(t *testing.T, resp map[string]any)
	}{
		{
			name:        "success_valid_bid",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "110.50"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("110.5")).
					Return(models.Bid{
						BidID:     "bid-1",
						AuctionID: "a1",
						BidderID:  "u1",
						Amount:    decimal.RequireFromString("110.50"),
						Status:    models.BidLeading,
						CreatedAt: now,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid recorded successfully",
			validate: func(t *testing.T, resp map[string]any) {
				data := resp["data"].(map[string]any)
				require.Equal(t, "bid-1", data["bid_id"])
				require.Equal(t, "a1", data["auction_id"])
				require.Equal(t, "u1", data["bidder_id"])
				require.Equal(t, "110.5", data["amount"])
				require.Equal(t, "leading", data["status"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_auction_id",
			requestBody:    helpers.PlaceBidRequest{Amount: "50"},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "amount_not_a_number",
			requestBody:    helpers.PlaceBidRequest{AuctionID: "a1", Amount: "ten"},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, "INVALID_BID", resp["code"])
			},
		},
		{
			name:        "service_bid_too_low",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "105"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("105")).
					Return(models.Bid{}, biddingerrors.NewBidTooLow(decimal.NewFromInt(105), decimal.NewFromInt(120)))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid amount too low",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, "BID_TOO_LOW", resp["code"])
				require.Equal(t, "120", resp["minimum_amount"])
				require.Equal(t, false, resp["retryable"])
			},
		},
		{
			name:        "service_auction_closed",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("200")).
					Return(models.Bid{}, fmt.Errorf("bidding: %w", biddingerrors.ErrAuctionClosed))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction state changed",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, "AUCTION_CLOSED", resp["code"])
			},
		},
		{
			name:        "service_self_bid",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("200")).
					Return(models.Bid{}, biddingerrors.ErrSelfBidNotAllowed)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "request not allowed",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, "SELF_BID_NOT_ALLOWED", resp["code"])
			},
		},
		{
			name:        "service_lock_timeout_is_retryable",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("200")).
					Return(models.Bid{}, biddingerrors.ErrLockTimeout)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction busy, retry",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, true, resp["retryable"])
			},
		},
		{
			name:        "service_dependency_failure",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "200"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("200")).
					Return(models.Bid{}, biddingerrors.Dependency("deposit", errors.New("timeout")))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "dependency unavailable",
		},
		{
			name:        "service_generic_error",
			requestBody: helpers.PlaceBidRequest{AuctionID: "a1", Amount: "100"},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					PlaceBid(gomock.Any(), "a1", "u1", amount("100")).
					Return(models.Bid{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
			validate: func(t *testing.T, resp map[string]any) {
				require.Equal(t, "INTERNAL", resp["code"])
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockBiddingServiceInterface(ctrl)
			tc.mockSetup(mockService)

			router := testRouter("u1", auth.RoleBidder)
			router.POST("/bids", NewBiddingHandler(mockService).RecordBidHandler)

			w, resp := doRequest(t, router, http.MethodPost, "/bids", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if tc.validate != nil {
				tc.validate(t, resp)
			}
		})
	}
}

// Test CreateAuctionHandler
func TestCreateAuctionHandler(t *testing.T) {
	end := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success_with_buy_now",
			requestBody: helpers.CreateAuctionRequest{
				Title:         "corgi puppy",
				StartingPrice: "100",
				MinIncrement:  "10",
				BuyNowPrice:   "500",
				EndTime:       end,
			},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					CreateAuction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, in bidding.NewAuction) (models.Auction, error) {
						if in.SellerID != "seller" || in.BuyNowPrice == nil || !in.BuyNowPrice.Equal(decimal.NewFromInt(500)) {
							return models.Auction{}, fmt.Errorf("unexpected input %+v", in)
						}
						return models.Auction{
							AuctionID:     "a1",
							SellerID:      in.SellerID,
							Title:         in.Title,
							StartingPrice: in.StartingPrice,
							CurrentPrice:  in.StartingPrice,
							MinIncrement:  in.MinIncrement,
							BuyNowPrice:   in.BuyNowPrice,
							EndTime:       in.EndTime,
							State:         models.AuctionActive,
						}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "auction created successfully",
		},
		{
			name:           "missing_title",
			requestBody:    helpers.CreateAuctionRequest{StartingPrice: "100", EndTime: end},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "bad_buy_now_price",
			requestBody:    helpers.CreateAuctionRequest{Title: "cat", StartingPrice: "100", BuyNowPrice: "lots", EndTime: end},
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request",
		},
		{
			name:        "service_rejects_window",
			requestBody: helpers.CreateAuctionRequest{Title: "cat", StartingPrice: "100", EndTime: end},
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().
					CreateAuction(gomock.Any(), gomock.Any()).
					Return(models.Auction{}, fmt.Errorf("bidding: %w - end before start", biddingerrors.ErrInvalidAuction))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockBiddingServiceInterface(ctrl)
			tc.mockSetup(mockService)

			router := testRouter("seller", auth.RoleBidder)
			router.POST("/auctions", NewBiddingHandler(mockService).CreateAuctionHandler)

			w, resp := doRequest(t, router, http.MethodPost, "/auctions", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, "a1", data["auction_id"])
				require.Equal(t, "seller", data["seller_id"])
				require.Equal(t, "500", data["buy_now_price"])
			}
		})
	}
}

func TestGetAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)

	mockService.EXPECT().GetAuction(gomock.Any(), "a1").Return(models.AuctionView{
		Auction: models.Auction{
			AuctionID:    "a1",
			CurrentPrice: decimal.NewFromInt(130),
			State:        models.AuctionActive,
		},
		BidCount:         2,
		LeadingBidder:    "u2",
		MinimumBid:       decimal.NewFromInt(140),
		RemainingSeconds: 42,
	}, nil)
	mockService.EXPECT().GetAuction(gomock.Any(), "missing").
		Return(models.AuctionView{}, fmt.Errorf("bidding: %w", biddingerrors.ErrAuctionNotFound))

	router := testRouter("u1", auth.RoleBidder)
	router.GET("/auctions/:auction_id", NewBiddingHandler(mockService).GetAuctionHandler)

	w, resp := doRequest(t, router, http.MethodGet, "/auctions/a1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, "130", data["current_price"])
	require.Equal(t, "140", data["minimum_bid"])
	require.Equal(t, "u2", data["leading_bidder"])
	require.Equal(t, 42.0, data["remaining_seconds"])

	w, resp = doRequest(t, router, http.MethodGet, "/auctions/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "AUCTION_NOT_FOUND", resp["code"])
}

// Test GetBidsByAuctionHandler
func TestGetBidsByAuctionHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		auctionID      string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
		expectedMsg    string
		expectedLen    int
	}{
		{
			name:      "success_multiple_bids",
			auctionID: "a1",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), "a1").Return([]models.Bid{
					{BidID: "b2", AuctionID: "a1", BidderID: "u2", Amount: decimal.NewFromInt(120), Status: models.BidLeading, CreatedAt: now},
					{BidID: "b1", AuctionID: "a1", BidderID: "u1", Amount: decimal.NewFromInt(110), Status: models.BidOutbid, CreatedAt: now},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedLen:    2,
		},
		{
			name:      "success_no_bids",
			auctionID: "a2",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), "a2").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedLen:    0,
		},
		{
			name:      "unknown_auction",
			auctionID: "a3",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsForAuction(gomock.Any(), "a3").Return(nil, biddingerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "not found",
		},
		{
			name:      "extremely_large_number_of_bids",
			auctionID: "a4",
			mockSetup: func(m *MockBiddingServiceInterface) {
				bids := make([]models.Bid, 1000)
				for i := range bids {
					bids[i] = models.Bid{
						BidID:     fmt.Sprintf("b%d", i),
						AuctionID: "a4",
						BidderID:  fmt.Sprintf("user%d", i),
						Amount:    decimal.NewFromInt(int64(i + 1)),
						CreatedAt: now,
					}
				}
				m.EXPECT().GetBidsForAuction(gomock.Any(), "a4").Return(bids, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedLen:    1000,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockBiddingServiceInterface(ctrl)
			tc.mockSetup(mockService)

			router := testRouter("u1", auth.RoleBidder)
			router.GET("/auctions/:auction_id/bids", NewBiddingHandler(mockService).GetBidsByAuctionHandler)

			w, resp := doRequest(t, router, http.MethodGet, "/auctions/"+tc.auctionID+"/bids", nil)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if w.Code == http.StatusOK {
				require.Len(t, resp["data"].([]any), tc.expectedLen)
			}
		})
	}
}

// Test GetWinningBidHandler
func TestGetWinningBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)

	mockService.EXPECT().GetWinningBid(gomock.Any(), "a1").Return(models.Bid{
		BidID:     "b1",
		AuctionID: "a1",
		BidderID:  "u1",
		Amount:    decimal.RequireFromString("1000000000000.25"),
		Status:    models.BidWon,
	}, nil)
	mockService.EXPECT().GetWinningBid(gomock.Any(), "a2").Return(models.Bid{}, biddingerrors.ErrNoBids)

	router := testRouter("u1", auth.RoleBidder)
	router.GET("/auctions/:auction_id/winning", NewBiddingHandler(mockService).GetWinningBidHandler)

	w, resp := doRequest(t, router, http.MethodGet, "/auctions/a1/winning", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, resp["message"], "winning bid retrieved successfully")
	data := resp["data"].(map[string]any)
	require.Equal(t, "1000000000000.25", data["amount"])
	require.Equal(t, "won", data["status"])

	w, resp = doRequest(t, router, http.MethodGet, "/auctions/a2/winning", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, resp["message"], "no winning bid found")
}

func TestCancelBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)

	mockService.EXPECT().CancelBid(gomock.Any(), "b1", "u1").
		Return(models.Bid{BidID: "b1", AuctionID: "a1", BidderID: "u1", Status: models.BidCancelled}, nil)
	mockService.EXPECT().CancelBid(gomock.Any(), "b2", "u1").
		Return(models.Bid{}, fmt.Errorf("bidding: %w", biddingerrors.ErrNotAuthorized))
	mockService.EXPECT().CancelBid(gomock.Any(), "b3", "u1").
		Return(models.Bid{}, fmt.Errorf("bidding: %w", biddingerrors.ErrCancellationNotAllowed))

	router := testRouter("u1", auth.RoleBidder)
	router.DELETE("/bids/:bid_id", NewBiddingHandler(mockService).CancelBidHandler)

	w, resp := doRequest(t, router, http.MethodDelete, "/bids/b1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cancelled", resp["data"].(map[string]any)["status"])

	w, _ = doRequest(t, router, http.MethodDelete, "/bids/b2", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, resp = doRequest(t, router, http.MethodDelete, "/bids/b3", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "CANCELLATION_NOT_ALLOWED", resp["code"])
}

func TestCloseAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)

	mockService.EXPECT().CloseAuction(gomock.Any(), "a1", "seller").Return(models.SettlementResult{
		AuctionID:  "a1",
		Outcome:    models.OutcomeSettled,
		WinnerID:   "u1",
		FinalPrice: decimal.NewFromInt(150),
		OrderID:    "order-1",
	}, nil)
	mockService.EXPECT().CloseAuction(gomock.Any(), "a2", "seller").
		Return(models.SettlementResult{}, biddingerrors.Dependency("order", errors.New("unavailable")))

	router := testRouter("seller", auth.RoleBidder)
	router.POST("/auctions/:auction_id/close", NewBiddingHandler(mockService).CloseAuctionHandler)

	w, resp := doRequest(t, router, http.MethodPost, "/auctions/a1/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, "settled", data["outcome"])
	require.Equal(t, "150", data["final_price"])

	w, resp = doRequest(t, router, http.MethodPost, "/auctions/a2/close", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "DEPENDENCY_FAILURE", resp["code"])
}

// Test user history endpoints
func TestUserHistoryHandlers(t *testing.T) {
	tests := []struct {
		name           string
		caller         string
		role           string
		path           string
		mockSetup      func(m *MockBiddingServiceInterface)
		expectedStatus int
	}{
		{
			name:   "own_bids",
			caller: "u1",
			role:   auth.RoleBidder,
			path:   "/users/u1/bids",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetBidsByUser(gomock.Any(), "u1").Return([]models.Bid{{BidID: "b1", BidderID: "u1"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "someone_elses_bids",
			caller:         "u2",
			role:           auth.RoleBidder,
			path:           "/users/u1/bids",
			mockSetup:      func(m *MockBiddingServiceInterface) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "admin_reads_any_stats",
			caller: "ops",
			role:   auth.RoleAdmin,
			path:   "/users/u1/stats",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetUserStats(gomock.Any(), "u1").Return(models.BidStats{UserID: "u1", TotalBids: 3, WonAuctions: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "own_wins",
			caller: "u1",
			role:   auth.RoleBidder,
			path:   "/users/u1/wins",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetWinsByUser(gomock.Any(), "u1").Return([]models.Bid{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "stats_store_failure",
			caller: "u1",
			role:   auth.RoleBidder,
			path:   "/users/u1/stats",
			mockSetup: func(m *MockBiddingServiceInterface) {
				m.EXPECT().GetUserStats(gomock.Any(), "u1").Return(models.BidStats{}, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockBiddingServiceInterface(ctrl)
			tc.mockSetup(mockService)

			h := NewBiddingHandler(mockService)
			router := testRouter(tc.caller, tc.role)
			router.GET("/users/:user_id/bids", h.GetBidsByUserHandler)
			router.GET("/users/:user_id/stats", h.GetUserStatsHandler)
			router.GET("/users/:user_id/wins", h.GetWinsByUserHandler)

			w, _ := doRequest(t, router, http.MethodGet, tc.path, nil)
			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestGetRulesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := NewMockBiddingServiceInterface(ctrl)
	mockService.EXPECT().Rules().Return(bidding.Rules{
		MinimumIncrement: decimal.NewFromInt(10),
		DepositRate:      decimal.RequireFromString("0.1"),
		ExtendThreshold:  "2m0s",
		ExtendDuration:   "2m0s",
		MaxExtensions:    10,
	})

	router := testRouter("", "")
	router.GET("/rules", NewBiddingHandler(mockService).GetRulesHandler)

	w, resp := doRequest(t, router, http.MethodGet, "/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, "10", data["minimum_increment"])
	require.Equal(t, 10.0, data["max_extensions"])
}
