package biddingerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrBidNotFound      = errors.New("bid not found")
	ErrAutoBidNotFound  = errors.New("auto-bid not found")
	ErrAuctionExists    = errors.New("auction already exists")
	ErrNoBids           = errors.New("no bids found for auction")
	ErrConcurrentUpdate = errors.New("auction modified concurrently")
)

// validation errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidAuction = errors.New("invalid auction")
	ErrInvalidAutoBid = errors.New("invalid auto-bid")
	ErrInvalidDeposit = errors.New("invalid deposit")
)

// state conflicts, retryable against fresh state
var (
	ErrAuctionClosed     = errors.New("auction closed")
	ErrAuctionNotActive  = errors.New("auction not active")
	ErrInvalidTransition = errors.New("invalid auction state transition")
	ErrLockTimeout       = errors.New("timed out waiting for auction lock")
	ErrLockHeld          = errors.New("lock already held")
	ErrSettlementPending = errors.New("auction settlement pending")
)

// policy violations, terminal for the request
var (
	ErrBidTooLow              = errors.New("bid amount too low")
	ErrInsufficientDeposit    = errors.New("insufficient deposit")
	ErrAccountSuspended       = errors.New("account suspended")
	ErrSelfBidNotAllowed      = errors.New("seller cannot bid on own auction")
	ErrCancellationNotAllowed = errors.New("bid cancellation not allowed")
	ErrNotAuthorized          = errors.New("not authorized")
	ErrAutoBidExists          = errors.New("auto-bid already active for auction")
)

// ErrDependency wraps failures of external collaborators
var ErrDependency = errors.New("dependency failure")

// BidTooLowError reports the exact minimum acceptable amount
type BidTooLowError struct {
	Amount  decimal.Decimal
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: %s is below minimum %s", ErrBidTooLow, e.Amount.StringFixed(2), e.Minimum.StringFixed(2))
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

// NewBidTooLow builds a BidTooLowError
func NewBidTooLow(amount, minimum decimal.Decimal) error {
	return &BidTooLowError{Amount: amount, Minimum: minimum}
}

// MinimumFor extracts the minimum acceptable amount from a BidTooLow error
func MinimumFor(err error) (decimal.Decimal, bool) {
	var tooLow *BidTooLowError
	if errors.As(err, &tooLow) {
		return tooLow.Minimum, true
	}
	return decimal.Zero, false
}

// Dependency marks err as a failure of the named external collaborator
func Dependency(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, name, err)
}
