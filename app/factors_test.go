package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "evosweep/domain/stats"
)

func TestParseFactors(t *testing.T) {
	factors := ParseFactors("pc09_pm01_pop100")
	assert.Equal(t, "09", factors["pc"])
	assert.Equal(t, "01", factors["pm"])
	assert.Equal(t, "100", factors["pop"])
}

func TestParseFactorsIgnoresMalformedTokens(t *testing.T) {
	factors := ParseFactors("pc09__noprefix_42_pm")
	assert.Equal(t, map[string]string{"pc": "09"}, factors)
}

func TestBuildFactorUnits(t *testing.T) {
	samples := []domain.Sample{
		group(t, "pc09_pm01", []float64{1, 2}),
		group(t, "pc09_pm02", []float64{3, 4}),
		group(t, "pc08_pm01", []float64{5, 6}),
	}
	units, err := BuildFactorUnits("hypervolume", samples, []string{"pc", "pm"})
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, "configuration", units[0].Factor)
	assert.Len(t, units[0].Samples, 3)

	// pc has levels 08 and 09; 09 pools two configurations.
	assert.Equal(t, "pc", units[1].Factor)
	require.Len(t, units[1].Samples, 2)
	assert.Equal(t, "pc=08", units[1].Samples[0].Name.String())
	assert.Equal(t, 2, units[1].Samples[0].N())
	assert.Equal(t, "pc=09", units[1].Samples[1].Name.String())
	assert.Equal(t, 4, units[1].Samples[1].N())

	assert.Equal(t, "pm", units[2].Factor)
	require.Len(t, units[2].Samples, 2)
}

func TestBuildFactorUnitsSkipsSingleLevelFactors(t *testing.T) {
	samples := []domain.Sample{
		group(t, "pc09_pm01", []float64{1, 2}),
		group(t, "pc09_pm02", []float64{3, 4}),
	}
	units, err := BuildFactorUnits("hypervolume", samples, []string{"pc", "pm"})
	require.NoError(t, err)
	// pc has a single level everywhere, so only configuration + pm remain.
	require.Len(t, units, 2)
	assert.Equal(t, "pm", units[1].Factor)
}

func TestBuildFactorUnitsEmpty(t *testing.T) {
	_, err := BuildFactorUnits("hypervolume", nil, []string{"pc"})
	assert.Error(t, err)
}

func TestRankGroupsByMean(t *testing.T) {
	samples := []domain.Sample{
		group(t, "mid", []float64{4, 5, 6}),
		group(t, "best", []float64{9, 10, 11}),
		group(t, "worst", []float64{1, 2, 3}),
	}
	rankings, err := RankGroupsByMean(samples)
	require.NoError(t, err)
	require.Len(t, rankings, 3)

	assert.Equal(t, "best", rankings[0].Group.String())
	assert.Equal(t, 1, rankings[0].Rank)
	assert.InDelta(t, 10.0, rankings[0].Mean, 1e-12)
	assert.Equal(t, "worst", rankings[2].Group.String())
}

func TestRankGroupsByMeanTieBreak(t *testing.T) {
	samples := []domain.Sample{
		group(t, "b", []float64{5}),
		group(t, "a", []float64{5}),
	}
	rankings, err := RankGroupsByMean(samples)
	require.NoError(t, err)
	assert.Equal(t, "a", rankings[0].Group.String())
}

func TestRankGroupsByMeanAllEmpty(t *testing.T) {
	_, err := RankGroupsByMean([]domain.Sample{{Name: "x"}})
	assert.Error(t, err)
}
