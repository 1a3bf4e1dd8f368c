package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pet-auction/internal/auth"
	"pet-auction/internal/gateway"
	"pet-auction/internal/models"
	handler "pet-auction/services/bidding/handler"
)

func TestSetupRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	bidding := handler.NewMockBiddingServiceInterface(ctrl)
	sweeper := handler.NewMockSweeperInterface(ctrl)

	tokens := auth.NewService("router-secret", time.Hour)
	bidderToken, err := tokens.IssueToken("u1", auth.RoleBidder)
	require.NoError(t, err)
	adminToken, err := tokens.IssueToken("ops", auth.RoleAdmin)
	require.NoError(t, err)

	router := SetupRouter(Dependencies{
		Tokens:   tokens,
		Bidding:  bidding,
		AutoBids: handler.NewMockAutoBidServiceInterface(ctrl),
		Sweeper:  sweeper,
		Deposits: gateway.NewMemoryDeposits(),
		Accounts: gateway.NewMemoryAccounts(),
	})

	bidding.EXPECT().
		PlaceBid(gomock.Any(), "a1", "u1", gomock.Any()).
		Return(models.Bid{BidID: "b1", AuctionID: "a1", BidderID: "u1", Amount: decimal.NewFromInt(110), Status: models.BidLeading}, nil)
	sweeper.EXPECT().RunOnce(gomock.Any()).Return([]models.SweepResult{}, nil)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		body           string
		expectedStatus int
	}{
		{"health_is_public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"bids_require_token", http.MethodPost, "/bids", "", `{"auction_id":"a1","amount":"110"}`, http.StatusUnauthorized},
		{"bidder_places_bid", http.MethodPost, "/bids", bidderToken.Token, `{"auction_id":"a1","amount":"110"}`, http.StatusCreated},
		{"bidder_cannot_sweep", http.MethodPost, "/admin/sweep", bidderToken.Token, "", http.StatusForbidden},
		{"admin_sweeps", http.MethodPost, "/admin/sweep", adminToken.Token, "", http.StatusOK},
		{"unknown_route", http.MethodGet, "/items/1", bidderToken.Token, "", http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}
