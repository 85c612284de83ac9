package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"splash-master/internal/ports"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

// Columns of the redshift-fit table in extension 1.
const (
	zspecFileColumn     = "SPEC1D_FILE"
	zspecSlitColumn     = "SLITNAME"
	zspecObjectColumn   = "OBJNAME"
	zspecZColumn        = "Z"
	zspecQualityColumn  = "ZQUALITY"
	zspecSNRColumn      = "SN"
	zspecABandColumn    = "ABAND"
	zspecMJDColumn      = "MJD"
	zspecAirmassColumn  = "AIRMASS"
	zspecTableExtension = 1
)

type ZspecFitsAdapter struct{}

func NewZspecFitsAdapter() ZspecFitsAdapter {
	return ZspecFitsAdapter{}
}

// ZspecPath returns the redshift file of a mask inside dir.
func ZspecPath(dir string, mask string) string {
	return filepath.Join(dir, fmt.Sprintf("zspec.%s.fits", mask))
}

func (a ZspecFitsAdapter) LoadMask(ctx context.Context, dir string, mask string) (types.RedshiftFile, error) {
	path := ZspecPath(dir, mask)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.RedshiftFile{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(shared.KindMsg(types.KindMissingCounterpartFile, "no redshift file %s for mask %s", path, mask)).
				WithCause(err)
		}
		return types.RedshiftFile{}, malformedZspec(path, "cannot stat file", err)
	}
	f, err := openFITS(path)
	if err != nil {
		return types.RedshiftFile{}, malformedZspec(path, "cannot open file", err)
	}
	defer f.Close()

	table := binaryTable(f.File, zspecTableExtension)
	if table == nil {
		return types.RedshiftFile{}, malformedZspec(path, "extension 1 is not a binary table", nil)
	}
	hasFile := hasColumn(table, zspecFileColumn)
	required := []string{zspecZColumn, zspecQualityColumn, zspecSNRColumn}
	if !hasFile {
		required = append(required, zspecSlitColumn, zspecObjectColumn)
	}
	for _, column := range required {
		if !hasColumn(table, column) {
			return types.RedshiftFile{}, malformedZspec(path, "missing column "+column, nil)
		}
	}

	rows, err := readRows(table)
	if err != nil {
		return types.RedshiftFile{}, malformedZspec(path, "cannot read rows", err)
	}
	file := types.RedshiftFile{
		Mask:          mask,
		Path:          path,
		HasSpec1DFile: hasFile,
		Rows:          make([]types.RedshiftRow, 0, len(rows)),
	}
	for _, row := range rows {
		file.Rows = append(file.Rows, decodeRedshiftRow(row))
	}
	log.Ctx(ctx).Debug().
		Str("path", path).
		Int("rows", len(file.Rows)).
		Bool("spec1d_file_column", hasFile).
		Msg("redshift file loaded")
	return file, nil
}

// decodeRedshiftRow converts a row map; absent optional columns decode
// as NaN.
func decodeRedshiftRow(row map[string]any) types.RedshiftRow {
	quality := math.NaN()
	if q, ok := floatOf(row[zspecQualityColumn]); ok {
		quality = q
	}
	decoded := types.RedshiftRow{
		Spec1DFile: stringOf(row[zspecFileColumn]),
		SlitName:   stringOf(row[zspecSlitColumn]),
		ObjName:    stringOf(row[zspecObjectColumn]),
		Z:          optionalFloat(row, zspecZColumn),
		SNR:        optionalFloat(row, zspecSNRColumn),
		ABand:      optionalFloat(row, zspecABandColumn),
		MJD:        optionalFloat(row, zspecMJDColumn),
		Airmass:    optionalFloat(row, zspecAirmassColumn),
	}
	if !math.IsNaN(quality) {
		decoded.Quality = types.Quality(int(math.Round(quality)))
	} else {
		decoded.Quality = types.QualityUnusable
	}
	return decoded
}

func optionalFloat(row map[string]any, column string) float64 {
	value, ok := row[column]
	if !ok {
		return math.NaN()
	}
	f, _ := floatOf(value)
	return f
}

func malformedZspec(path string, detail string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(shared.KindMsg(types.KindMalformedInputFile, "%s: %s", path, detail))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}

var _ ports.RedshiftSourcePort = ZspecFitsAdapter{}
