package biddingerrors

import "errors"

// Kind classifies an error for callers deciding whether to retry
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindPolicyViolation
	KindDependencyFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindPolicyViolation:
		return "policy_violation"
	case KindDependencyFailure:
		return "dependency_failure"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

type classified struct {
	err  error
	kind Kind
	code string
}

// order matters: the first match wins
var table = []classified{
	{ErrInvalidBid, KindValidation, "INVALID_BID"},
	{ErrInvalidAuction, KindValidation, "INVALID_AUCTION"},
	{ErrInvalidAutoBid, KindValidation, "INVALID_AUTOBID"},
	{ErrInvalidDeposit, KindValidation, "INVALID_DEPOSIT"},

	{ErrAuctionNotFound, KindNotFound, "AUCTION_NOT_FOUND"},
	{ErrBidNotFound, KindNotFound, "BID_NOT_FOUND"},
	{ErrAutoBidNotFound, KindNotFound, "AUTOBID_NOT_FOUND"},
	{ErrNoBids, KindNotFound, "NO_BIDS"},

	{ErrAuctionClosed, KindStateConflict, "AUCTION_CLOSED"},
	{ErrAuctionNotActive, KindStateConflict, "AUCTION_NOT_ACTIVE"},
	{ErrInvalidTransition, KindStateConflict, "INVALID_TRANSITION"},
	{ErrLockTimeout, KindStateConflict, "LOCK_TIMEOUT"},
	{ErrLockHeld, KindStateConflict, "LOCK_HELD"},
	{ErrConcurrentUpdate, KindStateConflict, "CONCURRENT_UPDATE"},
	{ErrSettlementPending, KindStateConflict, "SETTLEMENT_PENDING"},
	{ErrAuctionExists, KindStateConflict, "AUCTION_EXISTS"},

	{ErrBidTooLow, KindPolicyViolation, "BID_TOO_LOW"},
	{ErrAccountSuspended, KindPolicyViolation, "ACCOUNT_SUSPENDED"},
	{ErrInsufficientDeposit, KindPolicyViolation, "INSUFFICIENT_DEPOSIT"},
	{ErrSelfBidNotAllowed, KindPolicyViolation, "SELF_BID_NOT_ALLOWED"},
	{ErrCancellationNotAllowed, KindPolicyViolation, "CANCELLATION_NOT_ALLOWED"},
	{ErrNotAuthorized, KindPolicyViolation, "NOT_AUTHORIZED"},
	{ErrAutoBidExists, KindPolicyViolation, "AUTOBID_EXISTS"},

	{ErrDependency, KindDependencyFailure, "DEPENDENCY_FAILURE"},
}

func lookup(err error) (classified, bool) {
	if err == nil {
		return classified{}, false
	}
	for _, c := range table {
		if errors.Is(err, c.err) {
			return c, true
		}
	}
	return classified{}, false
}

// KindOf returns the taxonomy bucket of err
func KindOf(err error) Kind {
	c, ok := lookup(err)
	if !ok {
		return KindUnknown
	}
	return c.kind
}

// Code returns a stable reason code for clients
func Code(err error) string {
	c, ok := lookup(err)
	if !ok {
		return "INTERNAL"
	}
	return c.code
}

// Retryable reports whether re-sending the same request may succeed
func Retryable(err error) bool {
	return KindOf(err) == KindStateConflict
}
