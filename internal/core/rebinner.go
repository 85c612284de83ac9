package core

import (
	"context"
	"fmt"
	"math"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"splash-master/internal/ports"
	"splash-master/internal/types"
)

const (
	DefaultWorkers          = 8
	DefaultMinExtensions    = 5
	DefaultMaxInvalid       = 3000
	DefaultRedOverlapMargin = 25.0
	DefaultNormMin          = 7500.0
	DefaultNormMax          = 7600.0

	blueExtension        = 1
	redExtension         = 2
	fallbackRedExtension = 3
)

type RebinOptions struct {
	Workers          int
	MinExtensions    int
	MaxInvalid       int
	// RedOverlapMargin is in Angstrom; negative selects the default.
	RedOverlapMargin float64
	NormMin          float64
	NormMax          float64
}

func DefaultRebinOptions() RebinOptions {
	return RebinOptions{
		Workers:          DefaultWorkers,
		MinExtensions:    DefaultMinExtensions,
		MaxInvalid:       DefaultMaxInvalid,
		RedOverlapMargin: DefaultRedOverlapMargin,
		NormMin:          DefaultNormMin,
		NormMax:          DefaultNormMax,
	}
}

// SpectrumTable is the rebinner's output keyed by target.
type SpectrumTable struct {
	Tags    []string
	Spectra map[types.IdentityKey]types.RebinnedSpectrum
	Skipped map[types.SkipReason]int
}

func (t SpectrumTable) Columns() []string {
	return t.Tags
}

func (t SpectrumTable) Value(key types.IdentityKey, tag string) (types.Value, bool) {
	spectrum, ok := t.Spectra[key.Normalized()]
	if !ok {
		return types.Value{}, false
	}
	return spectrumValue(spectrum, tag), true
}

func spectrumValue(s types.RebinnedSpectrum, tag string) types.Value {
	switch tag {
	case types.TagLBIN:
		return types.ArrayValue(s.Lambda)
	case types.TagSpec:
		return types.ArrayValue(s.Flux)
	case types.TagIVar:
		return types.ArrayValue(s.IVar)
	case types.TagSpecNorm:
		return types.ArrayValue(s.FluxNorm)
	case types.TagIVarNorm:
		return types.ArrayValue(s.IVarNorm)
	case types.TagPosA:
		return types.FloatValue(s.Header.SlitPA)
	case types.TagParA:
		return types.FloatValue(s.Header.ParAngle)
	case types.TagRA:
		return types.StringValue(s.Header.RA)
	case types.TagDec:
		return types.StringValue(s.Header.Dec)
	case types.TagRADeg:
		return types.FloatValue(s.RADeg)
	case types.TagDecDeg:
		return types.FloatValue(s.DecDeg)
	case types.TagMaskRA:
		return types.StringValue(s.Header.MaskRA)
	case types.TagMaskDec:
		return types.StringValue(s.Header.MaskDec)
	case types.TagMaskRADeg:
		return types.FloatValue(s.MaskRADeg)
	case types.TagMaskDecDeg:
		return types.FloatValue(s.MaskDecDeg)
	default:
		return types.Value{}
	}
}

type Rebinner struct {
	Reader  ports.SpectrumReaderPort
	SkipLog ports.SkipLogPort
	Options RebinOptions
}

func NewRebinner(reader ports.SpectrumReaderPort, skipLog ports.SkipLogPort, options RebinOptions) Rebinner {
	return Rebinner{
		Reader:  reader,
		SkipLog: skipLog,
		Options: options,
	}
}

// skip is a per-target rejection. It never aborts the run.
type skip struct {
	reason types.SkipReason
	detail string
}

type outcome struct {
	spectrum types.RebinnedSpectrum
	skip     *skip
}

// Rebin reduces every target on a bounded worker pool. Targets are
// attempted once; rejected targets are written to the skip log and left
// out of the returned table. Only context cancellation is an error.
func (r Rebinner) Rebin(ctx context.Context, targets []types.Target, redshifts RedshiftTable, grid types.WavelengthGrid, tags []string) (SpectrumTable, error) {
	if r.Reader == nil || r.SkipLog == nil {
		return SpectrumTable{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("rebinner requires spectrum reader and skip log ports")
	}
	if grid.Len() < 2 {
		return SpectrumTable{}, invalidGrid("rebinner grid has %d points", grid.Len())
	}
	opts := r.normalizedOptions()
	logger := log.Ctx(ctx)

	outcomes := make([]outcome, len(targets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)
	for i, target := range targets {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			record, _ := redshifts.Lookup(target.Key)
			result := r.reduceSafely(groupCtx, target, record, grid, opts)
			if result.skip != nil {
				r.recordSkip(ctx, target, *result.skip)
			}
			outcomes[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return SpectrumTable{}, err
	}
	if err := ctx.Err(); err != nil {
		return SpectrumTable{}, err
	}

	table := SpectrumTable{
		Tags:    projectTags(tags, types.SpectrumTags, nil),
		Spectra: make(map[types.IdentityKey]types.RebinnedSpectrum, len(targets)),
		Skipped: map[types.SkipReason]int{},
	}
	for _, result := range outcomes {
		if result.skip != nil {
			table.Skipped[result.skip.reason]++
			continue
		}
		table.Spectra[result.spectrum.Key.Normalized()] = result.spectrum
	}
	logger.Info().
		Int("targets", len(targets)).
		Int("rebinned", len(table.Spectra)).
		Int("skipped", len(targets)-len(table.Spectra)).
		Msg("rest-frame rebinning finished")
	return table, nil
}

func (r Rebinner) normalizedOptions() RebinOptions {
	opts := r.Options
	defaults := DefaultRebinOptions()
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.MinExtensions <= 0 {
		opts.MinExtensions = defaults.MinExtensions
	}
	if opts.MaxInvalid <= 0 {
		opts.MaxInvalid = defaults.MaxInvalid
	}
	if opts.RedOverlapMargin < 0 || math.IsNaN(opts.RedOverlapMargin) {
		opts.RedOverlapMargin = defaults.RedOverlapMargin
	}
	if opts.NormMax <= opts.NormMin {
		opts.NormMin = defaults.NormMin
		opts.NormMax = defaults.NormMax
	}
	return opts
}

func (r Rebinner) recordSkip(ctx context.Context, target types.Target, s skip) {
	entry := types.SkipEntry{Path: target.Path, Reason: s.reason, Detail: s.detail}
	if err := r.SkipLog.Record(entry); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("file", target.Path).Msg("failed to write skip log entry")
	}
	log.Ctx(ctx).Debug().
		Str("file", target.Path).
		Str("reason", string(s.reason)).
		Msg(s.detail)
}

func (r Rebinner) reduceSafely(ctx context.Context, target types.Target, record types.RedshiftRecord, grid types.WavelengthGrid, opts RebinOptions) (result outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = outcome{skip: &skip{
				reason: types.SkipUnexpectedFailure,
				detail: fmt.Sprintf("panic: %v", recovered),
			}}
		}
	}()
	spectrum, rejected := r.reduce(ctx, target, record, grid, opts)
	if rejected != nil {
		return outcome{skip: rejected}
	}
	return outcome{spectrum: spectrum}
}

// reduce runs the per-target reduction: read, check, shift, rebin,
// stitch, normalize.
func (r Rebinner) reduce(ctx context.Context, target types.Target, record types.RedshiftRecord, grid types.WavelengthGrid, opts RebinOptions) (types.RebinnedSpectrum, *skip) {
	if math.IsNaN(record.Z) || math.IsInf(record.Z, 0) || record.Z <= -1 {
		return types.RebinnedSpectrum{}, &skip{types.SkipUndefinedRedshift, "no usable redshift for target"}
	}
	file, err := r.Reader.ReadSpectrum(ctx, target.Path)
	if err != nil {
		return types.RebinnedSpectrum{}, &skip{types.SkipUnreadableFile, err.Error()}
	}
	if file.Extensions < opts.MinExtensions {
		return types.RebinnedSpectrum{}, &skip{types.SkipTooFewExtensions,
			fmt.Sprintf("has %d extensions, need %d", file.Extensions, opts.MinExtensions)}
	}
	blue, red, rejected := selectArms(file, opts)
	if rejected != nil {
		return types.RebinnedSpectrum{}, rejected
	}
	if n := CountInvalid(blue.Flux); n > opts.MaxInvalid {
		return types.RebinnedSpectrum{}, &skip{types.SkipInsufficientValidSamples,
			fmt.Sprintf("blue arm has %d invalid flux values", n)}
	}
	if n := CountInvalid(red.Flux); n > opts.MaxInvalid {
		return types.RebinnedSpectrum{}, &skip{types.SkipInsufficientValidSamples,
			fmt.Sprintf("red arm has %d invalid flux values", n)}
	}

	shift := 1 + record.Z
	redFlux, redIVar, err := Rebin(restFrame(red.Lambda, shift), red.Flux, red.IVar, grid.Points)
	if err != nil {
		return types.RebinnedSpectrum{}, &skip{types.SkipInvalidWavelengthSolution, "red arm: " + err.Error()}
	}
	blueFlux, blueIVar, err := Rebin(restFrame(blue.Lambda, shift), blue.Flux, blue.IVar, grid.Points)
	if err != nil {
		return types.RebinnedSpectrum{}, &skip{types.SkipInvalidWavelengthSolution, "blue arm: " + err.Error()}
	}
	flux, ivar := Stitch(redFlux, redIVar, blueFlux, blueIVar)
	if !HasSignal(flux) {
		return types.RebinnedSpectrum{}, &skip{types.SkipEmptySpectrum, "stitched spectrum has no non-zero flux"}
	}

	fluxNorm, ivarNorm, factor, ok := Normalize(grid.Points, flux, ivar, opts.NormMin, opts.NormMax)
	if !ok {
		log.Ctx(ctx).Warn().
			Str("file", target.Path).
			Float64("window_min", opts.NormMin).
			Float64("window_max", opts.NormMax).
			Msg("normalization window holds no usable flux")
	}

	header := file.Header
	spectrum := types.RebinnedSpectrum{
		Key:        target.Key,
		Path:       target.Path,
		Lambda:     grid.Points,
		Flux:       flux,
		IVar:       ivar,
		FluxNorm:   fluxNorm,
		IVarNorm:   ivarNorm,
		NormFactor: factor,
		Header:     header,
		RADeg:      HoursToDegrees(header.RA),
		DecDeg:     DegreesValue(header.Dec),
		MaskRADeg:  HoursToDegrees(header.MaskRA),
		MaskDecDeg: DegreesValue(header.MaskDec),
	}
	assert.NotEmpty(ctx, spectrum.Key.Mask, "rebinned spectrum must carry its mask")
	return spectrum, nil
}

// selectArms picks the blue and red extensions. When the first red
// extension starts bluer than the end of the blue arm (less a margin)
// it is not the red arm and the fallback extension is used instead.
func selectArms(file types.RawSpectrumFile, opts RebinOptions) (types.ArmReadout, types.ArmReadout, *skip) {
	blue, ok := file.Arms[blueExtension]
	if !ok || blue.Empty() {
		return types.ArmReadout{}, types.ArmReadout{}, &skip{types.SkipMissingArmData, "blue arm structure is missing"}
	}
	red, ok := file.Arms[redExtension]
	if !ok || red.Empty() {
		return types.ArmReadout{}, types.ArmReadout{}, &skip{types.SkipMissingArmData, "red arm structure is missing"}
	}
	if minFinite(red.Lambda) < maxFinite(blue.Lambda)-opts.RedOverlapMargin {
		red, ok = file.Arms[fallbackRedExtension]
		if !ok || red.Empty() {
			return types.ArmReadout{}, types.ArmReadout{}, &skip{types.SkipMissingArmData,
				"red arm overlaps blue arm and fallback red structure is missing"}
		}
	}
	return blue, red, nil
}

func restFrame(lambda []float64, shift float64) []float64 {
	out := make([]float64, len(lambda))
	for i, l := range lambda {
		out[i] = l / shift
	}
	return out
}

func minFinite(values []float64) float64 {
	out := math.Inf(1)
	for _, v := range values {
		if !math.IsNaN(v) && v < out {
			out = v
		}
	}
	return out
}

func maxFinite(values []float64) float64 {
	out := math.Inf(-1)
	for _, v := range values {
		if !math.IsNaN(v) && v > out {
			out = v
		}
	}
	return out
}
