package stats

import (
	"testing"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_GoldSilver(t *testing.T) {
	got := Project(domain.PrizeDistribution{"gold": 3, "silver": 1})

	assert.Equal(t, []domain.StatEntry{
		{Label: "gold", Count: 3, Percentage: 75},
		{Label: "silver", Count: 1, Percentage: 25},
	}, got)
}

func TestProject_Empty(t *testing.T) {
	assert.Empty(t, Project(domain.PrizeDistribution{}))
	assert.Empty(t, Project(nil))
}

func TestProject_ZeroTotal(t *testing.T) {
	got := Project(domain.PrizeDistribution{"gold": 0, "silver": 0})

	require.Len(t, got, 2)
	for _, e := range got {
		assert.Zero(t, e.Percentage)
	}
}

func TestProject_TiesOrderedByLabel(t *testing.T) {
	got := Project(domain.PrizeDistribution{"zeta": 2, "alpha": 2, "mid": 5})

	labels := make([]string, len(got))
	for i, e := range got {
		labels[i] = e.Label
	}
	assert.Equal(t, []string{"mid", "alpha", "zeta"}, labels)
}

func TestProject_Deterministic(t *testing.T) {
	dist := domain.PrizeDistribution{"a": 1, "b": 1, "c": 1, "d": 7, "e": 3}
	first := Project(dist)
	for range 20 {
		assert.Equal(t, first, Project(dist))
	}
}

func TestProject_PercentagesSumNearHundred(t *testing.T) {
	tests := []domain.PrizeDistribution{
		{"a": 1, "b": 1, "c": 1},
		{"a": 1, "b": 2, "c": 3, "d": 4},
		{"a": 999, "b": 1},
		{"a": 17, "b": 29, "c": 31, "d": 5, "e": 11, "f": 7},
	}

	for _, dist := range tests {
		got := Project(dist)
		sum := 0
		for _, e := range got {
			sum += e.Percentage
		}
		// Each entry can deviate by at most half a point.
		assert.InDelta(t, 100, sum, float64(len(got))/2, "dist %v", dist)
	}
}

func TestProject_RoundsHalfUp(t *testing.T) {
	// 1/8 = 12.5% and 7/8 = 87.5%
	got := Project(domain.PrizeDistribution{"a": 1, "b": 7})

	assert.Equal(t, 88, got[0].Percentage)
	assert.Equal(t, 13, got[1].Percentage)
}

func TestProject_NegativeCountsIgnored(t *testing.T) {
	got := Project(domain.PrizeDistribution{"gold": 1, "broken": -5})

	require.Len(t, got, 2)
	assert.Equal(t, domain.StatEntry{Label: "gold", Count: 1, Percentage: 100}, got[0])
	assert.Equal(t, domain.StatEntry{Label: "broken", Count: 0, Percentage: 0}, got[1])
}

func TestTotal(t *testing.T) {
	assert.Equal(t, int64(4), Total(domain.PrizeDistribution{"gold": 3, "silver": 1}))
	assert.Equal(t, int64(0), Total(nil))
}
