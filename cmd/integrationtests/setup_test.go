package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"pet-auction/internal/app"
	"pet-auction/internal/auth"
	"pet-auction/internal/config"
	"pet-auction/services/bidding/helpers"
)

// testClock is a manually advanced clock shared by every component of a TestEnv
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is a fully wired in-memory application
type TestEnv struct {
	App    *app.App
	Router *gin.Engine
	Clock  *testClock
}

// SetupTestEnv initializes the application with in-memory stores for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "integration-secret"
	cfg.Sweeper.Enabled = false
	cfg.RateLimit.BidsPerMinute = 0

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	a, err := app.New(context.Background(), &cfg, app.Options{Now: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &TestEnv{App: a, Router: a.Router, Clock: clock}
}

// Token mints a bearer token for userID
func (e *TestEnv) Token(t *testing.T, userID, role string) string {
	t.Helper()
	resp, err := e.App.Tokens.IssueToken(userID, role)
	require.NoError(t, err)
	return resp.Token
}

// Fund gives each user a general deposit large enough for any test auction
func (e *TestEnv) Fund(t *testing.T, users ...string) {
	t.Helper()
	admin := e.Token(t, "ops", auth.RoleAdmin)
	for _, u := range users {
		_, w := ExecuteRequestAndParse(t, e.Router, http.MethodPost, "/admin/deposits", admin, helpers.DepositRequest{
			UserID: u,
			Amount: "10000",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
}

// CreateAuction lists an auction for seller ending after d and returns its id
func (e *TestEnv) CreateAuction(t *testing.T, seller string, d time.Duration, req helpers.CreateAuctionRequest) string {
	t.Helper()
	if req.Title == "" {
		req.Title = "test pet"
	}
	if req.StartingPrice == "" {
		req.StartingPrice = "100"
	}
	req.EndTime = e.Clock.Now().Add(d)

	resp, w := ExecuteRequestAndParse(t, e.Router, http.MethodPost, "/auctions", e.Token(t, seller, auth.RoleBidder), req)
	require.Equal(t, http.StatusCreated, w.Code, resp)
	return resp["auction_id"].(string)
}

// Bid places a bid as userID and returns the recorder
func (e *TestEnv) Bid(t *testing.T, userID, auctionID, amount string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, e.Router, http.MethodPost, "/bids", e.Token(t, userID, auth.RoleBidder), helpers.PlaceBidRequest{
		AuctionID: auctionID,
		Amount:    amount,
	})
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response.
// Created responses are unwrapped to their data object.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == http.StatusCreated {
			if data, ok := resp["data"].(map[string]any); ok {
				resp = data
			}
		}
	}

	return resp, w
}
