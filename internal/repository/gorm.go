package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
)

type auctionRow struct {
	AuctionID      string              `gorm:"primaryKey;size:64"`
	SellerID       string              `gorm:"index;size:64;not null"`
	Title          string              `gorm:"size:255"`
	StartingPrice  decimal.Decimal     `gorm:"type:numeric(18,2);not null"`
	CurrentPrice   decimal.Decimal     `gorm:"type:numeric(18,2);not null"`
	BuyNowPrice    decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	MinIncrement   decimal.Decimal     `gorm:"type:numeric(18,2);not null"`
	StartTime      time.Time           `gorm:"index;not null"`
	EndTime        time.Time           `gorm:"index;not null"`
	ExtensionCount int                 `gorm:"not null;default:0"`
	State          string              `gorm:"index;size:16;not null"`
	CloseReason    string              `gorm:"size:16"`
	Quantity       int                 `gorm:"not null;default:1"`
	Version        int64               `gorm:"not null;default:0"`
	CreatedAt      time.Time
	ClosedAt       *time.Time
	SettledAt      *time.Time
}

func (auctionRow) TableName() string { return "auctions" }

type bidRow struct {
	BidID     string          `gorm:"primaryKey;size:64"`
	AuctionID string          `gorm:"index;size:64;not null"`
	BidderID  string          `gorm:"index;size:64;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status    string          `gorm:"index;size:16;not null"`
	IsAutoBid bool
	Seq       int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (bidRow) TableName() string { return "bids" }

type orderRow struct {
	ID         string          `gorm:"primaryKey;size:64"`
	AuctionID  string          `gorm:"uniqueIndex;size:64;not null"`
	OrderID    string          `gorm:"size:64;not null"`
	SellerID   string          `gorm:"size:64"`
	WinnerID   string          `gorm:"index;size:64;not null"`
	BidID      string          `gorm:"size:64;not null"`
	FinalPrice decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt  time.Time
}

func (orderRow) TableName() string { return "winning_orders" }

type autoBidRow struct {
	AutoBidID string          `gorm:"primaryKey;size:64"`
	AuctionID string          `gorm:"index;size:64;not null"`
	UserID    string          `gorm:"index;size:64;not null"`
	MaxAmount decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Step      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	State     string          `gorm:"size:16;not null"`
	LastBidID string          `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (autoBidRow) TableName() string { return "auto_bids" }

// OpenSQLite opens a gorm connection to a sqlite database and runs migrations
// when migrate is set. sqlite allows a single writer, so the pool is capped at one connection.
func OpenSQLite(dsn string, migrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the auction tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&auctionRow{}, &bidRow{}, &orderRow{}, &autoBidRow{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// GormRepo is a gorm-backed implementation of AuctionDB and AutoBidDB
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an open gorm connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// CreateAuction stores a new auction
func (r *GormRepo) CreateAuction(ctx context.Context, auction models.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w", biddingerrors.ErrInvalidAuction)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&auctionRow{}).Where("auction_id = ?", auction.AuctionID).Count(&count).Error; err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	if count > 0 {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionExists)
	}

	row := toAuctionRow(auction)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction returns the stored auction
func (r *GormRepo) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	var row auctionRow
	if err := r.db.WithContext(ctx).First(&row, "auction_id = ?", auctionID).Error; err != nil {
		return models.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, notFound(err, biddingerrors.ErrAuctionNotFound))
	}
	return row.toModel(), nil
}

// GetRecord returns the auction with its bids and winning order
func (r *GormRepo) GetRecord(ctx context.Context, auctionID string) (models.AuctionRecord, error) {
	rec, err := loadRecord(r.db.WithContext(ctx), auctionID, false)
	if err != nil {
		return models.AuctionRecord{}, fmt.Errorf("get record %s: %w", auctionID, err)
	}
	return rec, nil
}

// ListAuctions returns auctions matching filter ordered by end time
func (r *GormRepo) ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, error) {
	q := r.db.WithContext(ctx).Model(&auctionRow{})
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, s := range filter.States {
			states[i] = string(s)
		}
		q = q.Where("state IN ?", states)
	}
	if !filter.StartingBy.IsZero() {
		q = q.Where("start_time <= ?", filter.StartingBy.UTC())
	}
	if !filter.EndingBy.IsZero() {
		q = q.Where("end_time <= ?", filter.EndingBy.UTC())
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}

	var rows []auctionRow
	if err := q.Order("end_time ASC").Order("auction_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	out := make([]models.Auction, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

// GetBid returns a bid by id
func (r *GormRepo) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	var row bidRow
	if err := r.db.WithContext(ctx).First(&row, "bid_id = ?", bidID).Error; err != nil {
		return models.Bid{}, fmt.Errorf("get bid %s: %w", bidID, notFound(err, biddingerrors.ErrBidNotFound))
	}
	return row.toModel(), nil
}

// GetBidsByAuction returns all bids for an auction, newest first
func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if _, err := r.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	var rows []bidRow
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at DESC").Order("seq DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	return bidModels(rows), nil
}

// GetBidsByUser returns every bid a user has placed, newest first
func (r *GormRepo) GetBidsByUser(ctx context.Context, userID string) ([]models.Bid, error) {
	var rows []bidRow
	if err := r.db.WithContext(ctx).
		Where("bidder_id = ?", userID).
		Order("created_at DESC").Order("seq DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get bids for user %s: %w", userID, err)
	}
	return bidModels(rows), nil
}

// Mutate loads the record inside a transaction (row-locked where the dialect
// supports it), applies fn and writes back the auction guarded by its version,
// new or changed bids, and a newly attached winning order.
func (r *GormRepo) Mutate(ctx context.Context, auctionID string, fn MutateFunc) (models.AuctionRecord, error) {
	var committed models.AuctionRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := loadRecord(tx, auctionID, tx.Dialector.Name() != "sqlite")
		if err != nil {
			return fmt.Errorf("mutate auction %s: %w", auctionID, err)
		}

		before := make(map[string]models.Bid, len(rec.Bids))
		for _, b := range rec.Bids {
			before[b.BidID] = b
		}
		hadOrder := rec.Order != nil
		version := rec.Auction.Version

		if err := fn(&rec); err != nil {
			return err
		}
		rec.Auction.AuctionID = auctionID
		rec.Auction.Version = version + 1

		res := tx.Model(&auctionRow{}).
			Where("auction_id = ? AND version = ?", auctionID, version).
			Updates(auctionColumns(toAuctionRow(rec.Auction)))
		if res.Error != nil {
			return fmt.Errorf("mutate auction %s: %w", auctionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mutate auction %s: %w", auctionID, biddingerrors.ErrConcurrentUpdate)
		}

		for i, b := range rec.Bids {
			old, seen := before[b.BidID]
			switch {
			case !seen:
				br := toBidRow(b, i)
				if err := tx.Create(&br).Error; err != nil {
					return fmt.Errorf("mutate auction %s: insert bid: %w", auctionID, err)
				}
			case old.Status != b.Status:
				if err := tx.Model(&bidRow{}).Where("bid_id = ?", b.BidID).
					Updates(map[string]any{"status": string(b.Status), "updated_at": b.UpdatedAt}).Error; err != nil {
					return fmt.Errorf("mutate auction %s: update bid: %w", auctionID, err)
				}
			}
		}

		if rec.Order != nil && !hadOrder {
			or := toOrderRow(*rec.Order)
			if err := tx.Create(&or).Error; err != nil {
				return fmt.Errorf("mutate auction %s: insert order: %w", auctionID, err)
			}
		}

		committed = rec
		return nil
	})
	if err != nil {
		return models.AuctionRecord{}, err
	}
	return committed, nil
}

// SaveAutoBid inserts or replaces an auto-bid agent
func (r *GormRepo) SaveAutoBid(ctx context.Context, autoBid models.AutoBid) error {
	if autoBid.AutoBidID == "" {
		return fmt.Errorf("save auto-bid: %w", biddingerrors.ErrInvalidAutoBid)
	}
	row := toAutoBidRow(autoBid)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save auto-bid %s: %w", autoBid.AutoBidID, err)
	}
	return nil
}

// GetAutoBid returns an auto-bid agent by id
func (r *GormRepo) GetAutoBid(ctx context.Context, autoBidID string) (models.AutoBid, error) {
	var row autoBidRow
	if err := r.db.WithContext(ctx).First(&row, "auto_bid_id = ?", autoBidID).Error; err != nil {
		return models.AutoBid{}, fmt.Errorf("get auto-bid %s: %w", autoBidID, notFound(err, biddingerrors.ErrAutoBidNotFound))
	}
	return row.toModel(), nil
}

// ListAutoBids returns the agents registered on an auction in creation order
func (r *GormRepo) ListAutoBids(ctx context.Context, auctionID string) ([]models.AutoBid, error) {
	var rows []autoBidRow
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").Order("auto_bid_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list auto-bids for auction %s: %w", auctionID, err)
	}
	out := make([]models.AutoBid, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func loadRecord(db *gorm.DB, auctionID string, forUpdate bool) (models.AuctionRecord, error) {
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row auctionRow
	if err := q.First(&row, "auction_id = ?", auctionID).Error; err != nil {
		return models.AuctionRecord{}, notFound(err, biddingerrors.ErrAuctionNotFound)
	}

	var bids []bidRow
	if err := db.Where("auction_id = ?", auctionID).Order("seq ASC").Find(&bids).Error; err != nil {
		return models.AuctionRecord{}, err
	}

	rec := models.AuctionRecord{Auction: row.toModel(), Bids: make([]models.Bid, len(bids))}
	for i := range bids {
		rec.Bids[i] = bids[i].toModel()
	}

	var orders []orderRow
	if err := db.Where("auction_id = ?", auctionID).Limit(1).Find(&orders).Error; err != nil {
		return models.AuctionRecord{}, err
	}
	if len(orders) == 1 {
		order := orders[0].toModel()
		rec.Order = &order
	}
	return rec, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func toAuctionRow(a models.Auction) auctionRow {
	row := auctionRow{
		AuctionID:      a.AuctionID,
		SellerID:       a.SellerID,
		Title:          a.Title,
		StartingPrice:  a.StartingPrice,
		CurrentPrice:   a.CurrentPrice,
		MinIncrement:   a.MinIncrement,
		StartTime:      a.StartTime.UTC(),
		EndTime:        a.EndTime.UTC(),
		ExtensionCount: a.ExtensionCount,
		State:          string(a.State),
		CloseReason:    string(a.CloseReason),
		Quantity:       a.Quantity,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		ClosedAt:       a.ClosedAt,
		SettledAt:      a.SettledAt,
	}
	if a.BuyNowPrice != nil {
		row.BuyNowPrice = decimal.NewNullDecimal(*a.BuyNowPrice)
	}
	return row
}

// auctionColumns lists every mutable column so zero values are written too
func auctionColumns(row auctionRow) map[string]any {
	return map[string]any{
		"seller_id":       row.SellerID,
		"title":           row.Title,
		"starting_price":  row.StartingPrice,
		"current_price":   row.CurrentPrice,
		"buy_now_price":   row.BuyNowPrice,
		"min_increment":   row.MinIncrement,
		"start_time":      row.StartTime,
		"end_time":        row.EndTime,
		"extension_count": row.ExtensionCount,
		"state":           row.State,
		"close_reason":    row.CloseReason,
		"quantity":        row.Quantity,
		"version":         row.Version,
		"closed_at":       row.ClosedAt,
		"settled_at":      row.SettledAt,
	}
}

func (row auctionRow) toModel() models.Auction {
	a := models.Auction{
		AuctionID:      row.AuctionID,
		SellerID:       row.SellerID,
		Title:          row.Title,
		StartingPrice:  row.StartingPrice,
		CurrentPrice:   row.CurrentPrice,
		MinIncrement:   row.MinIncrement,
		StartTime:      row.StartTime,
		EndTime:        row.EndTime,
		ExtensionCount: row.ExtensionCount,
		State:          models.AuctionState(row.State),
		CloseReason:    models.CloseReason(row.CloseReason),
		Quantity:       row.Quantity,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		ClosedAt:       row.ClosedAt,
		SettledAt:      row.SettledAt,
	}
	if row.BuyNowPrice.Valid {
		price := row.BuyNowPrice.Decimal
		a.BuyNowPrice = &price
	}
	return a
}

func toBidRow(b models.Bid, seq int) bidRow {
	return bidRow{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		IsAutoBid: b.IsAutoBid,
		Seq:       seq,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (row bidRow) toModel() models.Bid {
	return models.Bid{
		BidID:     row.BidID,
		AuctionID: row.AuctionID,
		BidderID:  row.BidderID,
		Amount:    row.Amount,
		Status:    models.BidStatus(row.Status),
		IsAutoBid: row.IsAutoBid,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func bidModels(rows []bidRow) []models.Bid {
	out := make([]models.Bid, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out
}

func toOrderRow(o models.WinningOrder) orderRow {
	return orderRow{
		ID:         o.ID,
		AuctionID:  o.AuctionID,
		OrderID:    o.OrderID,
		SellerID:   o.SellerID,
		WinnerID:   o.WinnerID,
		BidID:      o.BidID,
		FinalPrice: o.FinalPrice,
		CreatedAt:  o.CreatedAt,
	}
}

func (row orderRow) toModel() models.WinningOrder {
	return models.WinningOrder{
		ID:         row.ID,
		AuctionID:  row.AuctionID,
		OrderID:    row.OrderID,
		SellerID:   row.SellerID,
		WinnerID:   row.WinnerID,
		BidID:      row.BidID,
		FinalPrice: row.FinalPrice,
		CreatedAt:  row.CreatedAt,
	}
}

func toAutoBidRow(ab models.AutoBid) autoBidRow {
	return autoBidRow{
		AutoBidID: ab.AutoBidID,
		AuctionID: ab.AuctionID,
		UserID:    ab.UserID,
		MaxAmount: ab.MaxAmount,
		Step:      ab.Step,
		State:     string(ab.State),
		LastBidID: ab.LastBidID,
		CreatedAt: ab.CreatedAt,
		UpdatedAt: ab.UpdatedAt,
	}
}

func (row autoBidRow) toModel() models.AutoBid {
	return models.AutoBid{
		AutoBidID: row.AutoBidID,
		AuctionID: row.AuctionID,
		UserID:    row.UserID,
		MaxAmount: row.MaxAmount,
		Step:      row.Step,
		State:     models.AutoBidState(row.State),
		LastBidID: row.LastBidID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
