package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 14, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		aFrom, aTo     time.Time
		bFrom, bTo     time.Time
		wantConflict   bool
	}{
		{"disjoint before", day(1), day(3), day(5), day(8), false},
		{"disjoint after", day(10), day(12), day(5), day(8), false},
		{"full containment", day(5), day(6), day(4), day(9), true},
		{"partial front", day(3), day(6), day(5), day(8), true},
		{"partial back", day(7), day(10), day(5), day(8), true},
		{"identical", day(5), day(8), day(5), day(8), true},
		{"touching end to start", day(1), day(5), day(5), day(8), true},
		{"touching start to end", day(8), day(12), day(5), day(8), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(tc.aFrom, tc.aTo, tc.bFrom, tc.bTo)
			assert.Equal(t, tc.wantConflict, got)
		})
	}
}

func TestValidateStay(t *testing.T) {
	assert.NoError(t, ValidateStay(day(1), day(2)))
	assert.ErrorIs(t, ValidateStay(day(2), day(1)), ErrInvalidStay)
	assert.ErrorIs(t, ValidateStay(day(2), day(2)), ErrInvalidStay)
}

func TestStayDaysRoundsUp(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, StayDays(from, from.Add(24*time.Hour)))
	assert.Equal(t, 2, StayDays(from, from.Add(46*time.Hour)))
	assert.Equal(t, 2, StayDays(from, from.Add(48*time.Hour)))
	assert.Equal(t, 3, StayDays(from, from.Add(49*time.Hour)))
}
