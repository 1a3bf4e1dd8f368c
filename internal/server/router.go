package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet-auction/internal/gateway"
	handler "pet-auction/services/bidding/handler"
	"pet-auction/utils"
)

// Dependencies are the collaborators the HTTP surface is built from
type Dependencies struct {
	Tokens     TokenVerifier
	Bidding    handler.BiddingServiceInterface
	AutoBids   handler.AutoBidServiceInterface
	Sweeper    handler.SweeperInterface
	Deposits   gateway.DepositWriter
	Accounts   gateway.AccountWriter
	BidLimiter *RateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(deps.Bidding)
	autoBidHandler := handler.NewAutoBidHandler(deps.AutoBids)
	adminHandler := handler.NewAdminHandler(deps.Sweeper, deps.Deposits, deps.Accounts)

	limiter := deps.BidLimiter
	if limiter == nil {
		limiter = NewRateLimiter(0)
	}

	router.GET("/health", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "healthy")
	})
	router.GET("/rules", biddingHandler.GetRulesHandler)

	api := router.Group("")
	api.Use(JWTAuth(deps.Tokens))

	auctions := api.Group("/auctions")
	{
		auctions.POST("", biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
		auctions.POST("/:auction_id/close", biddingHandler.CloseAuctionHandler)
		auctions.POST("/:auction_id/autobids", limiter.Middleware(), autoBidHandler.CreateAutoBidHandler)
	}

	bids := api.Group("/bids")
	{
		bids.POST("", limiter.Middleware(), biddingHandler.RecordBidHandler)
		bids.DELETE("/:bid_id", biddingHandler.CancelBidHandler)
	}

	users := api.Group("/users")
	{
		users.GET("/:user_id/bids", biddingHandler.GetBidsByUserHandler)
		users.GET("/:user_id/stats", biddingHandler.GetUserStatsHandler)
		users.GET("/:user_id/wins", biddingHandler.GetWinsByUserHandler)
	}

	autoBids := api.Group("/autobids")
	{
		autoBids.POST("/:autobid_id/pause", autoBidHandler.PauseAutoBidHandler)
		autoBids.POST("/:autobid_id/resume", autoBidHandler.ResumeAutoBidHandler)
		autoBids.DELETE("/:autobid_id", autoBidHandler.CancelAutoBidHandler)
	}

	admin := api.Group("/admin")
	admin.Use(RequireAdmin)
	{
		admin.POST("/sweep", adminHandler.SweepHandler)
		admin.POST("/deposits", adminHandler.PutDepositHandler)
		admin.POST("/suspensions", adminHandler.SuspensionHandler)
	}

	return router
}
