package extension

import (
	"time"

	"pet-auction/internal/models"
)

// Anchor selects what an extension is measured from
type Anchor string

const (
	// AnchorBid moves the end to bid time + Duration, never backwards
	AnchorBid Anchor = "bid"
	// AnchorEnd adds Duration to the current end
	AnchorEnd Anchor = "end"
)

// Policy is the anti-sniping rule applied to every accepted bid
type Policy struct {
	Threshold time.Duration
	Duration  time.Duration
	Max       int
	Anchor    Anchor
}

// Decision describes what Apply did
type Decision struct {
	Extended bool
	OldEnd   time.Time
	NewEnd   time.Time
	Count    int
}

// Apply extends the auction in place when a bid accepted at now lands
// within Threshold of the current end and the cap is not reached.
// The cap is authoritative: once ExtensionCount == Max the end never moves.
func (p Policy) Apply(a *models.Auction, now time.Time) Decision {
	d := Decision{OldEnd: a.EndTime, NewEnd: a.EndTime, Count: a.ExtensionCount}

	if p.Duration <= 0 || a.ExtensionCount >= p.Max {
		return d
	}
	if a.EndTime.Sub(now) > p.Threshold {
		return d
	}

	var end time.Time
	switch p.Anchor {
	case AnchorEnd:
		end = a.EndTime.Add(p.Duration)
	case AnchorBid:
		end = now.Add(p.Duration)
	default:
		end = now.Add(p.Duration)
	}
	if !end.After(a.EndTime) {
		return d
	}

	a.EndTime = end
	a.ExtensionCount++

	d.Extended = true
	d.NewEnd = end
	d.Count = a.ExtensionCount
	return d
}
