package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// NewGrid builds the run's rest-frame grid: trunc((max-min)/step)
// points starting at min.
func NewGrid(minLambda float64, maxLambda float64, step float64) (types.WavelengthGrid, error) {
	if !shared.IsFinite(minLambda) || !shared.IsFinite(maxLambda) || !shared.IsFinite(step) {
		return types.WavelengthGrid{}, invalidGrid("grid bounds must be finite")
	}
	if step <= 0 {
		return types.WavelengthGrid{}, invalidGrid("step must be positive, got %g", step)
	}
	if maxLambda <= minLambda {
		return types.WavelengthGrid{}, invalidGrid("max %g must exceed min %g", maxLambda, minLambda)
	}
	n := int(math.Trunc((maxLambda - minLambda) / step))
	if n < 2 {
		return types.WavelengthGrid{}, invalidGrid("grid needs at least 2 points, got %d", n)
	}
	points := make([]float64, n)
	for i := range points {
		points[i] = minLambda + step*float64(i)
	}
	return types.WavelengthGrid{
		Min:    minLambda,
		Max:    maxLambda,
		Step:   step,
		Points: points,
	}, nil
}

// pixelEdges returns the n+1 boundaries of pixels centred on centers:
// midpoints between neighbours, with the outer edges extrapolated by
// half a pixel.
func pixelEdges(centers []float64) []float64 {
	n := len(centers)
	edges := make([]float64, n+1)
	edges[0] = centers[0] - (centers[1]-centers[0])/2
	for i := 1; i < n; i++ {
		edges[i] = (centers[i-1] + centers[i]) / 2
	}
	edges[n] = centers[n-1] + (centers[n-1]-centers[n-2])/2
	return edges
}

// Ascending reports whether values are finite and strictly increasing.
func Ascending(values []float64) bool {
	for i, v := range values {
		if !shared.IsFinite(v) {
			return false
		}
		if i > 0 && v <= values[i-1] {
			return false
		}
	}
	return true
}

// Rebin resamples flux and inverse variance from the ascending pixel
// centres wave onto grid.
//
// Each output bin is the overlap-weighted mean flux density of the input
// pixels it covers, so flux is conserved; the variance of the mean is
// propagated with the squared normalized weights. Input pixels with
// non-finite flux are gaps. Non-positive or NaN inverse variance is
// infinite variance. Bins without any overlap are NaN in both outputs.
func Rebin(wave []float64, flux []float64, ivar []float64, grid []float64) ([]float64, []float64, error) {
	if len(wave) != len(flux) || len(wave) != len(ivar) {
		return nil, nil, fmt.Errorf("array lengths differ: lambda=%d flux=%d ivar=%d", len(wave), len(flux), len(ivar))
	}
	if len(wave) < 2 || len(grid) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 samples, got %d input and %d grid", len(wave), len(grid))
	}
	if !Ascending(wave) {
		return nil, nil, fmt.Errorf("wavelength solution is not strictly ascending")
	}
	src := pixelEdges(wave)
	dst := pixelEdges(grid)
	n, m := len(wave), len(grid)

	weights := make([]float64, m)
	fluxSum := make([]float64, m)
	varSum := make([]float64, m)
	q, k := 0, 0
	for q < n && k < m {
		lo := math.Max(src[q], dst[k])
		hi := math.Min(src[q+1], dst[k+1])
		if hi > lo && shared.IsFinite(flux[q]) {
			w := hi - lo
			weights[k] += w
			fluxSum[k] += w * flux[q]
			varSum[k] += w * w * variance(ivar[q])
		}
		if src[q+1] < dst[k+1] {
			q++
		} else {
			k++
		}
	}

	outFlux := make([]float64, m)
	outIVar := make([]float64, m)
	for k := range outFlux {
		if weights[k] == 0 {
			outFlux[k] = math.NaN()
			outIVar[k] = math.NaN()
			continue
		}
		outFlux[k] = fluxSum[k] / weights[k]
		v := varSum[k] / (weights[k] * weights[k])
		outIVar[k] = 1 / v
	}
	return outFlux, outIVar, nil
}

func variance(ivar float64) float64 {
	if math.IsNaN(ivar) || ivar <= 0 {
		return math.Inf(1)
	}
	return 1 / ivar
}

// Stitch merges two arms sampled on the same grid: the red value where
// it is defined, the blue one elsewhere. Inverse variance follows the
// flux choice.
func Stitch(redFlux, redIVar, blueFlux, blueIVar []float64) ([]float64, []float64) {
	flux := make([]float64, len(redFlux))
	ivar := make([]float64, len(redFlux))
	for i := range redFlux {
		if !math.IsNaN(redFlux[i]) {
			flux[i] = redFlux[i]
			ivar[i] = redIVar[i]
			continue
		}
		flux[i] = blueFlux[i]
		ivar[i] = blueIVar[i]
	}
	return flux, ivar
}

// Normalize divides flux by its median inside the open window
// (lo, hi) and scales inverse variance by the square of that factor.
// ok is false when the window holds no finite flux or the median is 0;
// the normalized arrays are then all NaN.
func Normalize(lambda, flux, ivar []float64, lo, hi float64) (fluxNorm []float64, ivarNorm []float64, factor float64, ok bool) {
	var window []float64
	for i, l := range lambda {
		if l > lo && l < hi && shared.IsFinite(flux[i]) {
			window = append(window, flux[i])
		}
	}
	factor = Median(window)
	if !shared.IsFinite(factor) || factor == 0 {
		return shared.NaNs(len(flux)), shared.NaNs(len(ivar)), factor, false
	}
	fluxNorm = make([]float64, len(flux))
	ivarNorm = make([]float64, len(ivar))
	for i := range flux {
		fluxNorm[i] = flux[i] / factor
		ivarNorm[i] = ivar[i] * factor * factor
	}
	return fluxNorm, ivarNorm, factor, true
}

// Median returns the median of values, averaging the two middle values
// for even lengths. Empty input yields NaN.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CountInvalid counts NaN and exactly-zero entries.
func CountInvalid(values []float64) int {
	count := 0
	for _, v := range values {
		if math.IsNaN(v) || v == 0 {
			count++
		}
	}
	return count
}

// HasSignal reports whether any entry is finite and non-zero.
func HasSignal(values []float64) bool {
	for _, v := range values {
		if shared.IsFinite(v) && v != 0 {
			return true
		}
	}
	return false
}

func invalidGrid(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(shared.KindMsg(types.KindInvalidGrid, format, args...))
}
