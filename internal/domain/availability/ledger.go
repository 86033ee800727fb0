package availability

import (
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/fault"
)

var ErrRangeNotAvailable = fault.New(fault.ErrInvalidInput, "dates_unavailable", "availability: requested dates are not within available dates")

// Ledger is the set of open date ranges of one listing. Comparisons against a
// requested stay are done on calendar days.
type Ledger struct {
	ranges []daterange.DateRange
}

func NewLedger(ranges []daterange.DateRange) Ledger {
	return Ledger{ranges: append([]daterange.DateRange(nil), ranges...)}
}

func (l Ledger) Ranges() []daterange.DateRange {
	return append([]daterange.DateRange(nil), l.ranges...)
}

func (l Ledger) Empty() bool { return len(l.ranges) == 0 }

// IsFullyAvailable reports whether request fits inside a single open range.
// Two touching ranges are not treated as one.
func (l Ledger) IsFullyAvailable(request daterange.DateRange) bool {
	return l.containing(request) >= 0
}

func (l Ledger) containing(request daterange.DateRange) int {
	req := request.Truncate()
	for i, r := range l.ranges {
		if r.Truncate().Contains(req) {
			return i
		}
	}
	return -1
}

// Consumption is the outcome of removing a booked stay from the ledger.
type Consumption struct {
	Consumed  daterange.DateRange
	Remaining []daterange.DateRange
}

// Exhausted is true when nothing bookable is left.
func (c Consumption) Exhausted() bool { return len(c.Remaining) == 0 }

// Consume removes request from the range that contains it and returns the
// full resulting range list. Remainders shorter than one night are dropped.
func (l Ledger) Consume(request daterange.DateRange) (Consumption, error) {
	idx := l.containing(request)
	if idx < 0 {
		return Consumption{}, ErrRangeNotAvailable
	}
	cut := request.Truncate()
	remaining := make([]daterange.DateRange, 0, len(l.ranges)+1)
	for i, r := range l.ranges {
		if i != idx {
			remaining = append(remaining, r)
			continue
		}
		for _, piece := range r.Subtract(cut) {
			if piece.Nights() < 1 {
				continue
			}
			remaining = append(remaining, piece)
		}
	}
	return Consumption{Consumed: cut, Remaining: remaining}, nil
}

// AnyOverlap is the search-side check: the listing shows up when any open
// range overlaps the window.
func (l Ledger) AnyOverlap(window daterange.DateRange) bool {
	return daterange.AnyOverlap(l.ranges, window)
}
