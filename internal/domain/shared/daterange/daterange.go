package daterange

import (
	"math"
	"sort"
	"time"
)

const day = 24 * time.Hour

// DateRange is a stay or availability window. Start must be strictly before End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrMissingBound
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether inner lies within dr, bounds inclusive.
func (dr DateRange) Contains(inner DateRange) bool {
	return !inner.Start.Before(dr.Start) && !inner.End.After(dr.End)
}

// Overlaps is inclusive: ranges that only touch count as overlapping.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !dr.End.Before(other.Start)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.End.Equal(other.Start) || dr.Start.Equal(other.End)
}

func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !dr.Overlaps(other) {
		return DateRange{}, false
	}
	start := dr.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := dr.End
	if other.End.After(end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}, true
}

// Subtract returns what is left of dr after removing cut: nothing, a leading
// piece, a trailing piece, or both when cut falls in the middle.
func (dr DateRange) Subtract(cut DateRange) []DateRange {
	if !cut.Start.After(dr.Start) && !cut.End.Before(dr.End) {
		return nil
	}
	var out []DateRange
	if cut.Start.After(dr.Start) {
		end := cut.Start
		if dr.End.Before(end) {
			end = dr.End
		}
		out = append(out, DateRange{Start: dr.Start, End: end})
	}
	if cut.End.Before(dr.End) {
		start := cut.End
		if dr.Start.After(start) {
			start = dr.Start
		}
		out = append(out, DateRange{Start: start, End: dr.End})
	}
	return out
}

// Truncate drops the time of day from both bounds (UTC).
func (dr DateRange) Truncate() DateRange {
	return DateRange{Start: TruncateDay(dr.Start), End: TruncateDay(dr.End)}
}

// Nights counts calendar nights between the day-truncated bounds. Any
// remaining fraction rounds up.
func (dr DateRange) Nights() int {
	t := dr.Truncate()
	diff := t.End.Sub(t.Start)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AnyOverlap reports whether window overlaps at least one of ranges.
func AnyOverlap(ranges []DateRange, window DateRange) bool {
	for _, r := range ranges {
		if r.Overlaps(window) {
			return true
		}
	}
	return false
}

// Normalize sorts ranges by start and merges those that overlap or touch.
// The input slice is not modified.
func Normalize(ranges []DateRange) []DateRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]DateRange, len(ranges))
	for i, r := range ranges {
		sorted[i] = DateRange{Start: r.Start.UTC(), End: r.End.UTC()}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	out := []DateRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if merged, ok := last.Merge(r); ok {
			*last = merged
			continue
		}
		out = append(out, r)
	}
	return out
}
