package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"pet-auction/internal/biddingerrors"
	"pet-auction/internal/models"
	"pet-auction/utils"
)

// MemoryDeposits keeps deposits in process
type MemoryDeposits struct {
	mu       sync.RWMutex
	auctions map[string]models.Deposit // key: userID|auctionID
	general  map[string]models.Deposit // key: userID
}

func NewMemoryDeposits() *MemoryDeposits {
	return &MemoryDeposits{
		auctions: make(map[string]models.Deposit),
		general:  make(map[string]models.Deposit),
	}
}

func depositKey(userID, auctionID string) string {
	return userID + "|" + auctionID
}

func (m *MemoryDeposits) GetAuctionDeposit(_ context.Context, userID, auctionID string) (*models.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.auctions[depositKey(userID, auctionID)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *MemoryDeposits) GetGeneralDeposit(_ context.Context, userID string) (*models.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.general[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// PutDeposit inserts or replaces a deposit. Scope follows AuctionID: empty means general.
func (m *MemoryDeposits) PutDeposit(_ context.Context, deposit models.Deposit) error {
	deposit, err := normalizeDeposit(deposit)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if deposit.Scope == models.ScopeGeneral {
		m.general[deposit.UserID] = deposit
	} else {
		m.auctions[depositKey(deposit.UserID, deposit.AuctionID)] = deposit
	}
	return nil
}

func normalizeDeposit(d models.Deposit) (models.Deposit, error) {
	if d.UserID == "" || d.Amount.IsNegative() {
		return d, fmt.Errorf("put deposit: user id and non-negative amount required: %w", biddingerrors.ErrInvalidDeposit)
	}
	if d.Status == "" {
		d.Status = models.DepositActive
	}
	if !d.Status.Valid() {
		return d, fmt.Errorf("put deposit: unknown status %q: %w", d.Status, biddingerrors.ErrInvalidDeposit)
	}
	if d.AuctionID == "" {
		d.Scope = models.ScopeGeneral
	} else {
		d.Scope = models.ScopeAuction
	}
	if d.DepositID == "" {
		d.DepositID = utils.GeneratePrefixedID("dep")
	}
	return d, nil
}

// MemoryAccounts keeps the suspended-user set in process
type MemoryAccounts struct {
	mu        sync.RWMutex
	suspended map[string]bool
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{suspended: make(map[string]bool)}
}

func (m *MemoryAccounts) IsSuspended(_ context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.suspended[userID], nil
}

func (m *MemoryAccounts) SetSuspended(_ context.Context, userID string, suspended bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if suspended {
		m.suspended[userID] = true
	} else {
		delete(m.suspended, userID)
	}
	return nil
}

// MemoryOrders is an idempotent in-process order subsystem
type MemoryOrders struct {
	mu     sync.Mutex
	orders map[string]string // key: auctionID -> value: orderID
	calls  int
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{orders: make(map[string]string)}
}

func (m *MemoryOrders) CreateWinningOrder(_ context.Context, auctionID, winnerID string, finalPrice decimal.Decimal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if id, ok := m.orders[auctionID]; ok {
		return id, nil
	}
	id := utils.GeneratePrefixedID("ord")
	m.orders[auctionID] = id

	utils.Info("Winning order created", map[string]any{
		"auction_id":  auctionID,
		"winner_id":   winnerID,
		"final_price": finalPrice.StringFixed(2),
		"order_id":    id,
	})
	return id, nil
}

// Count returns the number of distinct orders created
func (m *MemoryOrders) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// Calls returns how many times CreateWinningOrder was invoked
func (m *MemoryOrders) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var (
	_ DepositSource = (*MemoryDeposits)(nil)
	_ DepositWriter = (*MemoryDeposits)(nil)
	_ AccountSource = (*MemoryAccounts)(nil)
	_ AccountWriter = (*MemoryAccounts)(nil)
	_ OrderService  = (*MemoryOrders)(nil)
)
