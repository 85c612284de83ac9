package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

func TestNewGridDefaultLength(t *testing.T) {
	grid, err := NewGrid(4000, 10000, 0.65)
	require.NoError(t, err)
	assert.Equal(t, 9230, grid.Len())
	assert.Equal(t, 4000.0, grid.Points[0])
	assert.InDelta(t, 4000+0.65*9229, grid.Points[grid.Len()-1], 1e-9)
}

func TestNewGridRejectsBadBounds(t *testing.T) {
	for _, tt := range []struct {
		name           string
		lo, hi, stride float64
	}{
		{"zero step", 4000, 10000, 0},
		{"negative step", 4000, 10000, -1},
		{"inverted", 10000, 4000, 1},
		{"single point", 4000, 4001, 1},
		{"nan", math.NaN(), 10000, 1},
	} {
		_, err := NewGrid(tt.lo, tt.hi, tt.stride)
		require.Error(t, err, tt.name)
		assert.True(t, shared.IsKind(err, types.KindInvalidGrid), tt.name)
	}
}

func TestRebinOntoOwnGridIsIdentity(t *testing.T) {
	wave := []float64{5000, 5001, 5002, 5003, 5004, 5005}
	flux := []float64{1, 3, 2, 7, 4, 6}
	ivar := []float64{2, 2, 4, 1, 0.5, 8}

	gotFlux, gotIVar, err := Rebin(wave, flux, ivar, wave)
	require.NoError(t, err)
	for i := range wave {
		assert.InDelta(t, flux[i], gotFlux[i], 1e-12, "flux[%d]", i)
		assert.InDelta(t, ivar[i], gotIVar[i], 1e-9, "ivar[%d]", i)
	}
}

func TestRebinAveragesOntoCoarserGrid(t *testing.T) {
	wave := []float64{0.5, 1.5, 2.5, 3.5}
	flux := []float64{1, 3, 5, 7}
	ivar := []float64{1, 1, 1, 1}
	grid := []float64{1, 3}

	gotFlux, gotIVar, err := Rebin(wave, flux, ivar, grid)
	require.NoError(t, err)
	assert.InDelta(t, 2, gotFlux[0], 1e-12)
	assert.InDelta(t, 6, gotFlux[1], 1e-12)
	// mean of two unit-variance pixels has variance 1/2
	assert.InDelta(t, 2, gotIVar[0], 1e-12)
	assert.InDelta(t, 2, gotIVar[1], 1e-12)
}

func TestRebinLeavesUncoveredBinsUndefined(t *testing.T) {
	wave := []float64{10, 11, 12}
	flux := []float64{1, 1, 1}
	ivar := []float64{1, 1, 1}
	grid := []float64{1, 2, 11, 30, 31}

	gotFlux, gotIVar, err := Rebin(wave, flux, ivar, grid)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gotFlux[0]))
	assert.True(t, math.IsNaN(gotIVar[0]))
	assert.InDelta(t, 1, gotFlux[2], 1e-12)
	assert.True(t, math.IsNaN(gotFlux[4]))
}

func TestRebinTreatsNonPositiveIVarAsInfiniteVariance(t *testing.T) {
	wave := []float64{1, 2, 3}
	flux := []float64{4, 4, 4}
	ivar := []float64{0, -1, math.NaN()}

	gotFlux, gotIVar, err := Rebin(wave, flux, ivar, wave)
	require.NoError(t, err)
	for i := range wave {
		assert.InDelta(t, 4, gotFlux[i], 1e-12)
		assert.Equal(t, 0.0, gotIVar[i])
	}
}

func TestRebinRejectsBrokenWavelengthSolution(t *testing.T) {
	_, _, err := Rebin([]float64{1, 3, 2}, []float64{1, 1, 1}, []float64{1, 1, 1}, []float64{1, 2})
	require.Error(t, err)

	_, _, err = Rebin([]float64{1, 2}, []float64{1}, []float64{1, 1}, []float64{1, 2})
	require.Error(t, err)
}

func TestStitchPrefersRed(t *testing.T) {
	nan := math.NaN()
	flux, ivar := Stitch(
		[]float64{nan, 2, 3, nan},
		[]float64{nan, 20, 30, nan},
		[]float64{1, 9, nan, nan},
		[]float64{10, 90, nan, nan},
	)
	assert.Equal(t, []float64{1, 2, 3}, flux[:3])
	assert.Equal(t, []float64{10, 20, 30}, ivar[:3])
	assert.True(t, math.IsNaN(flux[3]))
	assert.True(t, math.IsNaN(ivar[3]))
}

func TestNormalizeUsesOpenWindowMedian(t *testing.T) {
	lambda := []float64{7499, 7500, 7550, 7560, 7570, 7600, 7700}
	flux := []float64{100, 100, 2, 4, math.NaN(), 100, 100}
	ivar := []float64{1, 1, 1, 1, 1, 1, 1}

	fluxNorm, ivarNorm, factor, ok := Normalize(lambda, flux, ivar, 7500, 7600)
	require.True(t, ok)
	assert.Equal(t, 3.0, factor)
	assert.InDelta(t, 2.0/3, fluxNorm[2], 1e-12)
	assert.InDelta(t, 9, ivarNorm[2], 1e-12)
	assert.InDelta(t, 100.0/3, fluxNorm[0], 1e-12)
}

func TestNormalizeWithoutWindowData(t *testing.T) {
	lambda := []float64{4000, 5000}
	fluxNorm, ivarNorm, factor, ok := Normalize(lambda, []float64{1, 2}, []float64{1, 1}, 7500, 7600)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(factor))
	assert.Len(t, fluxNorm, 2)
	assert.True(t, math.IsNaN(fluxNorm[0]))
	assert.True(t, math.IsNaN(ivarNorm[1]))
}

func TestMedianAndCounts(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(Median(nil)))

	assert.Equal(t, 3, CountInvalid([]float64{0, math.NaN(), 1, 0, math.Inf(1)}))
	assert.False(t, HasSignal([]float64{0, math.NaN()}))
	assert.True(t, HasSignal([]float64{0, -2}))
}
