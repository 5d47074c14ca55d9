package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSpec_IsZero(t *testing.T) {
	assert.True(t, (&FilterSpec{}).IsZero())
	assert.True(t, (&FilterSpec{DateRange: DateRangeAll}).IsZero())

	constrained := []FilterSpec{
		{Ratings: []int{5}},
		{Potencies: []string{"30C"}},
		{Forms: []string{"pellets"}},
		{DateRange: DateRangeWeek},
		{ReviewerNameQuery: "jane"},
		{AilmentReference: "insomnia"},
		{FreeTextQuery: "headache"},
	}
	for _, spec := range constrained {
		assert.False(t, spec.IsZero())
	}
}

func TestDateRange_CutoffDays(t *testing.T) {
	tests := []struct {
		rng  DateRange
		days int
		ok   bool
	}{
		{DateRangeToday, 1, true},
		{DateRangeWeek, 7, true},
		{DateRangeMonth, 30, true},
		{DateRangeYear, 365, true},
		{DateRangeAll, 0, false},
		{DateRange("bogus"), 0, false},
	}
	for _, tt := range tests {
		days, ok := tt.rng.CutoffDays()
		assert.Equal(t, tt.days, days)
		assert.Equal(t, tt.ok, ok)
	}
}
