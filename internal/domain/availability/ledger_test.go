package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/daterange"
)

func june(day int) time.Time {
	return time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
}

func span(from, to int) daterange.DateRange {
	return daterange.DateRange{Start: june(from), End: june(to)}
}

func TestIsFullyAvailableRequiresSingleRange(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 10), span(10, 20)})

	assert.True(t, ledger.IsFullyAvailable(span(2, 9)))
	assert.True(t, ledger.IsFullyAvailable(span(10, 20)))
	assert.False(t, ledger.IsFullyAvailable(span(8, 12)), "touching ranges are not merged")
	assert.False(t, ledger.IsFullyAvailable(span(19, 25)))
}

func TestIsFullyAvailableComparesCalendarDays(t *testing.T) {
	open := daterange.DateRange{Start: june(1).Add(14 * time.Hour), End: june(10).Add(10 * time.Hour)}
	ledger := NewLedger([]daterange.DateRange{open})

	req := daterange.DateRange{Start: june(1).Add(9 * time.Hour), End: june(10).Add(11 * time.Hour)}
	assert.True(t, ledger.IsFullyAvailable(req))
}

func TestConsumeSplitsContainingRange(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 30)})

	res, err := ledger.Consume(span(10, 15))
	require.NoError(t, err)
	assert.Equal(t, []daterange.DateRange{span(1, 10), span(15, 30)}, res.Remaining)
	assert.False(t, res.Exhausted())
	assert.Equal(t, span(10, 15), res.Consumed)
}

func TestConsumeKeepsOtherRanges(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 5), span(10, 20), span(25, 28)})

	res, err := ledger.Consume(span(10, 20))
	require.NoError(t, err)
	assert.Equal(t, []daterange.DateRange{span(1, 5), span(25, 28)}, res.Remaining)
}

func TestConsumeWholeRangeExhaustsLedger(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 5)})

	res, err := ledger.Consume(span(1, 5))
	require.NoError(t, err)
	assert.Empty(t, res.Remaining)
	assert.True(t, res.Exhausted())
}

func TestConsumeDropsSubNightRemainders(t *testing.T) {
	open := daterange.DateRange{Start: june(1), End: june(5).Add(10 * time.Hour)}
	ledger := NewLedger([]daterange.DateRange{open})

	res, err := ledger.Consume(span(1, 5))
	require.NoError(t, err)
	assert.True(t, res.Exhausted())
}

func TestConsumeUnavailableRange(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 5)})

	_, err := ledger.Consume(span(4, 8))
	require.ErrorIs(t, err, ErrRangeNotAvailable)
}

func TestLedgerDoesNotAliasInput(t *testing.T) {
	in := []daterange.DateRange{span(1, 5)}
	ledger := NewLedger(in)
	in[0] = span(7, 9)
	assert.Equal(t, []daterange.DateRange{span(1, 5)}, ledger.Ranges())
}

func TestAnyOverlap(t *testing.T) {
	ledger := NewLedger([]daterange.DateRange{span(1, 5)})
	assert.True(t, ledger.AnyOverlap(span(5, 9)))
	assert.False(t, ledger.AnyOverlap(span(6, 9)))
}
