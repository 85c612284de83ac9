package adapters

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/astrogo/fitsio"
	"github.com/rs/zerolog/log"

	"splash-master/internal/ports"
	"splash-master/internal/types"
)

// Arm extensions carry their arrays in the first row of these columns.
const (
	lambdaColumn = "LAMBDA"
	fluxColumn   = "SPEC"
	ivarColumn   = "IVAR"
)

// armExtensions are the HDUs that may hold arm data: blue, red and the
// fallback red.
var armExtensions = []int{1, 2, 3}

type Spec1DFitsAdapter struct{}

func NewSpec1DFitsAdapter() Spec1DFitsAdapter {
	return Spec1DFitsAdapter{}
}

// ReadSpectrum decodes a spec1d file. Extensions without table data are
// left out of Arms rather than reported as errors.
func (a Spec1DFitsAdapter) ReadSpectrum(ctx context.Context, path string) (types.RawSpectrumFile, error) {
	f, err := openFITS(path)
	if err != nil {
		return types.RawSpectrumFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open spectrum file: " + path).
			WithCause(err)
	}
	defer f.Close()

	spectrum := types.RawSpectrumFile{
		Path:       path,
		Extensions: len(f.HDUs()),
		Arms:       map[int]types.ArmReadout{},
	}
	for _, ext := range armExtensions {
		table := binaryTable(f.File, ext)
		if table == nil {
			continue
		}
		arm, err := readArm(table)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("file", path).Int("extension", ext).Msg("arm extension unreadable")
			continue
		}
		if !arm.Empty() {
			spectrum.Arms[ext] = arm
		}
	}
	if table := binaryTable(f.File, 1); table != nil {
		spectrum.Header = readObjectHeader(table.Header())
	}
	return spectrum, nil
}

func readArm(table *fitsio.Table) (types.ArmReadout, error) {
	for _, column := range []string{lambdaColumn, fluxColumn, ivarColumn} {
		if !hasColumn(table, column) {
			return types.ArmReadout{}, nil
		}
	}
	if table.NumRows() == 0 {
		return types.ArmReadout{}, nil
	}
	rows, err := table.Read(0, 1)
	if err != nil {
		return types.ArmReadout{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return types.ArmReadout{}, rows.Err()
	}
	row := map[string]any{}
	if err := rows.Scan(&row); err != nil {
		return types.ArmReadout{}, err
	}
	lambda, okL := floatsOf(row[lambdaColumn])
	flux, okF := floatsOf(row[fluxColumn])
	ivar, okI := floatsOf(row[ivarColumn])
	if !okL || !okF || !okI || len(lambda) != len(flux) || len(lambda) != len(ivar) {
		return types.ArmReadout{}, nil
	}
	return types.ArmReadout{Lambda: lambda, Flux: flux, IVar: ivar}, nil
}

func readObjectHeader(hdr *fitsio.Header) types.ObjectHeader {
	return types.ObjectHeader{
		RA:       headerString(hdr, "RA_OBJ"),
		Dec:      headerString(hdr, "DEC_OBJ"),
		SlitPA:   headerFloat(hdr, "SLITPA"),
		ParAngle: headerFloat(hdr, "PARANG"),
		MaskRA:   headerString(hdr, "RA"),
		MaskDec:  headerString(hdr, "DEC"),
	}
}

var _ ports.SpectrumReaderPort = Spec1DFitsAdapter{}
