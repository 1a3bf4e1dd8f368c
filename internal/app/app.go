package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pet-auction/internal/auth"
	"pet-auction/internal/autobid"
	bidding "pet-auction/internal/biddingService"
	"pet-auction/internal/config"
	"pet-auction/internal/deposit"
	"pet-auction/internal/events"
	"pet-auction/internal/extension"
	"pet-auction/internal/gateway"
	"pet-auction/internal/locking"
	"pet-auction/internal/repository"
	"pet-auction/internal/server"
	"pet-auction/internal/settlement"
	"pet-auction/internal/sweeper"
	"pet-auction/utils"
)

// Options let callers replace parts of the wiring. Zero values mean "build from config".
type Options struct {
	Now   func() time.Time
	Redis redis.UniversalClient
}

// App holds the assembled process
type App struct {
	cfg *config.Config

	Router   *gin.Engine
	Service  *bidding.BiddingService
	AutoBids *autobid.Manager
	Sweeper  *sweeper.Sweeper
	Tokens   *auth.Service
	Limiter  *server.RateLimiter
	Bus      events.Bus
	Deposits gateway.DepositWriter
	Accounts gateway.AccountWriter
	Orders   gateway.OrderService

	closers []func() error
}

type depositStore interface {
	gateway.DepositSource
	gateway.DepositWriter
}

type accountStore interface {
	gateway.AccountSource
	gateway.AccountWriter
}

type stores struct {
	auctions repository.AuctionDB
	autoBids repository.AutoBidDB
	deposits depositStore
	accounts accountStore
	orders   gateway.OrderService
}

// New wires every component from cfg. The caller must Close the result.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{cfg: cfg}

	st, err := a.openStores(cfg.Store)
	if err != nil {
		return nil, err
	}

	var (
		locker locking.Locker = locking.NewKeyedLocker()
		bus    events.Bus     = events.NewLocalBus()
		leader sweeper.LeaderLock
	)
	rdb := opts.Redis
	if rdb == nil && cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		rdb = client
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: redis ping: %w", err)
		}
		redisLocker := locking.NewRedisLocker(rdb)
		locker = redisLocker
		leader = redisLocker
		bus = events.NewRedisBus(rdb)
	}

	notifier := gateway.NewLogNotifier()
	gate := deposit.NewGate(st.deposits, st.accounts, cfg.Policy.DepositRate.Decimal)

	engine := settlement.NewEngine(st.auctions, locker, st.orders, notifier, bus, settlement.Options{
		LockWait: cfg.Locking.Wait.Duration,
		LockTTL:  cfg.Locking.TTL.Duration,
		Now:      opts.Now,
	})

	a.Service = bidding.NewBiddingService(st.auctions, locker, gate, engine, notifier, bus, bidding.Config{
		MinimumIncrement: cfg.Policy.MinimumIncrement.Decimal,
		DepositRate:      cfg.Policy.DepositRate.Decimal,
		Extension: extension.Policy{
			Threshold: cfg.Policy.ExtendThreshold.Duration,
			Duration:  cfg.Policy.ExtendDuration.Duration,
			Max:       cfg.Policy.MaxExtensions,
			Anchor:    extension.Anchor(cfg.Policy.ExtendAnchor),
		},
		CancelWindow: cfg.Policy.CancelWindow.Duration,
		LockWait:     cfg.Locking.Wait.Duration,
		LockTTL:      cfg.Locking.TTL.Duration,
		Now:          opts.Now,
	})

	a.AutoBids = autobid.NewManager(st.autoBids, a.Service, opts.Now)
	a.Sweeper = sweeper.New(st.auctions, a.Service, sweeper.Options{
		Interval:  cfg.Sweeper.Interval.Duration,
		Leader:    leader,
		LeaderTTL: cfg.Sweeper.LeaderTTL.Duration,
		Now:       opts.Now,
	})
	a.Tokens = auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	a.Limiter = server.NewRateLimiter(cfg.RateLimit.BidsPerMinute)
	a.Bus = bus
	a.Deposits = st.deposits
	a.Accounts = st.accounts
	a.Orders = st.orders

	a.Router = server.SetupRouter(server.Dependencies{
		Tokens:     a.Tokens,
		Bidding:    a.Service,
		AutoBids:   a.AutoBids,
		Sweeper:    a.Sweeper,
		Deposits:   st.deposits,
		Accounts:   st.accounts,
		BidLimiter: a.Limiter,
	})

	utils.Info("app: wired", map[string]any{
		"store":  cfg.Store.Driver,
		"redis":  rdb != nil,
		"anchor": cfg.Policy.ExtendAnchor,
	})
	return a, nil
}

func (a *App) openStores(cfg config.StoreConfig) (stores, error) {
	if cfg.Driver != "sqlite" {
		repo := repository.NewMemoryRepo()
		return stores{
			auctions: repo,
			autoBids: repo,
			deposits: gateway.NewMemoryDeposits(),
			accounts: gateway.NewMemoryAccounts(),
			orders:   gateway.NewMemoryOrders(),
		}, nil
	}

	db, err := repository.OpenSQLite(cfg.DSN, cfg.AutoMigrate)
	if err != nil {
		return stores{}, fmt.Errorf("app: %w", err)
	}
	a.closers = append(a.closers, closeDB(db))
	if cfg.AutoMigrate {
		if err := gateway.Migrate(db); err != nil {
			_ = a.Close()
			return stores{}, fmt.Errorf("app: %w", err)
		}
	}

	repo := repository.NewGormRepo(db)
	return stores{
		auctions: repo,
		autoBids: repo,
		deposits: gateway.NewGormDeposits(db),
		accounts: gateway.NewGormAccounts(db),
		orders:   gateway.NewGormOrders(db),
	}, nil
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}

// Run serves HTTP and runs the background workers until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// the feed closes when ctx is done, which stops the manager
	feed, err := a.Bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("app: subscribe: %w", err)
	}

	g.Go(func() error {
		return a.AutoBids.Run(ctx, feed)
	})
	g.Go(func() error {
		return a.Limiter.Run(ctx)
	})
	if a.cfg.Sweeper.Enabled {
		g.Go(func() error {
			return a.Sweeper.Start(ctx)
		})
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		utils.Info("HTTP server listening", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		utils.Info("HTTP server shutting down", nil)
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// Close releases the store and redis connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
