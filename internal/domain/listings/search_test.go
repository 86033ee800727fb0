package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/daterange"
)

func TestSearchFilterMatches(t *testing.T) {
	l, err := NewListing(params())
	require.NoError(t, err)
	l.PetFriendly = true

	intp := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }

	cases := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{"empty filter", SearchFilter{}, true},
		{"location substring", SearchFilter{Location: "mOR"}, true},
		{"location miss", SearchFilter{Location: "Falun"}, false},
		{"window overlaps", SearchFilter{Window: &daterange.DateRange{Start: day(time.June, 29), End: day(time.July, 2)}}, true},
		{"window touches", SearchFilter{Window: &daterange.DateRange{Start: day(time.June, 30), End: day(time.July, 3)}}, true},
		{"window misses", SearchFilter{Window: &daterange.DateRange{Start: day(time.August, 1), End: day(time.August, 3)}}, false},
		{"enough adults", SearchFilter{MinAdults: intp(4)}, true},
		{"too many adults", SearchFilter{MinAdults: intp(5)}, false},
		{"too many animals", SearchFilter{MinAnimals: intp(2)}, false},
		{"price inside", SearchFilter{Price: &PriceRange{Min: 100, Max: 380}}, true},
		{"price outside", SearchFilter{Price: &PriceRange{Min: 400, Max: 500}}, false},
		{"type exact", SearchFilter{Type: "house"}, true},
		{"type is case sensitive", SearchFilter{Type: "House"}, false},
		{"place exact", SearchFilter{Place: "near lake"}, true},
		{"pet friendly", SearchFilter{PetFriendly: boolp(true)}, true},
		{"not pet friendly", SearchFilter{PetFriendly: boolp(false)}, false},
		{"activity present", SearchFilter{Activities: []string{"hiking"}}, true},
		{"all activities required", SearchFilter{Activities: []string{"hiking", "fishing"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(l))
		})
	}
}

func TestSearchFilterSkipsUnavailable(t *testing.T) {
	l, err := NewListing(params())
	require.NoError(t, err)
	l.IsAvailable = false
	assert.False(t, SearchFilter{}.Matches(l))
}
