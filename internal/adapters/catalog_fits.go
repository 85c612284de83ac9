package adapters

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/astrogo/fitsio"
	"github.com/rs/zerolog/log"

	"splash-master/internal/ports"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

const (
	catalogTableName   = "MASTER"
	catalogTargetTag   = "TARGET"
	catalogRunIDCard   = "RUNID"
	catalogLMinCard    = "LMIN"
	catalogLMaxCard    = "LMAX"
	catalogLStepCard   = "LSTEP"
	catalogNLBinCard   = "NLBIN"
	catalogTableExtNum = 1

	// fitsio writes a NUL byte ahead of every binary-table string, so
	// string columns are stored one byte wider than their content.
	stringCellPad = 1
)

// CatalogFitsAdapter writes the master table as a FITS binary table and
// reads it back for inspection.
type CatalogFitsAdapter struct{}

func NewCatalogFitsAdapter() CatalogFitsAdapter {
	return CatalogFitsAdapter{}
}

// catalogColumn is one output column with the Go type of its cells.
type catalogColumn struct {
	tag    string
	format types.TagFormat
	width  int
	gotype reflect.Type
}

func (a CatalogFitsAdapter) WriteCatalog(path string, table *types.MasterTable, vocab types.TagVocabulary, grid types.WavelengthGrid, runID string) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog output path is empty")
	}
	if table == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog table is nil")
	}
	columns, err := catalogColumns(table, vocab, grid)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create catalog directory").
				WithCause(err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return catalogWriteError(path, err)
	}
	defer out.Close()
	if err := writeCatalogFITS(out, table, columns, grid, runID); err != nil {
		return catalogWriteError(path, err)
	}
	if err := out.Close(); err != nil {
		return catalogWriteError(path, err)
	}
	log.Debug().
		Str("path", path).
		Int("rows", table.Len()).
		Int("columns", len(columns)).
		Msg("catalog written")
	return nil
}

func catalogColumns(table *types.MasterTable, vocab types.TagVocabulary, grid types.WavelengthGrid) ([]catalogColumn, error) {
	targetWidth := 1
	for _, key := range table.Index {
		if n := len(key.String()); n > targetWidth {
			targetWidth = n
		}
	}
	columns := []catalogColumn{{
		tag:    catalogTargetTag,
		format: types.TagFormat(fmt.Sprintf("%dA", targetWidth)),
		width:  targetWidth,
		gotype: reflect.TypeOf(""),
	}}
	for _, tag := range table.Columns {
		format, ok := vocab[tag]
		if !ok || !format.Valid() {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(shared.KindMsg(types.KindSchemaViolation, "no storage format for tag %s", tag))
		}
		column := catalogColumn{tag: tag, format: format}
		switch {
		case format.IsArray():
			column.gotype = reflect.ArrayOf(grid.Len(), reflect.TypeOf(float32(0)))
		case format.IsString():
			column.width = format.Width()
			column.gotype = reflect.TypeOf("")
		default:
			column.gotype = reflect.TypeOf(float64(0))
		}
		columns = append(columns, column)
	}
	return columns, nil
}

func (c catalogColumn) fitsFormat(grid types.WavelengthGrid) string {
	switch {
	case c.format.IsArray():
		return fmt.Sprintf("%dE", grid.Len())
	case c.format.IsString():
		return fmt.Sprintf("%dA", c.width+stringCellPad)
	default:
		return string(c.format)
	}
}

func writeCatalogFITS(out *os.File, table *types.MasterTable, columns []catalogColumn, grid types.WavelengthGrid, runID string) error {
	f, err := fitsio.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	header := fitsio.NewHeader([]fitsio.Card{
		{Name: catalogRunIDCard, Value: runID, Comment: "build run identifier"},
		{Name: catalogLMinCard, Value: grid.Min, Comment: "rest-frame grid start [Angstrom]"},
		{Name: catalogLMaxCard, Value: grid.Max, Comment: "rest-frame grid end [Angstrom]"},
		{Name: catalogLStepCard, Value: grid.Step, Comment: "rest-frame grid step [Angstrom]"},
		{Name: catalogNLBinCard, Value: grid.Len(), Comment: "rest-frame grid points"},
	}, fitsio.IMAGE_HDU, 8, []int{})
	primary, err := fitsio.NewPrimaryHDU(header)
	if err != nil {
		return err
	}
	if err := f.Write(primary); err != nil {
		return err
	}

	fitsColumns := make([]fitsio.Column, 0, len(columns))
	for _, column := range columns {
		fitsColumns = append(fitsColumns, fitsio.Column{
			Name:   column.tag,
			Format: column.fitsFormat(grid),
		})
	}
	tbl, err := fitsio.NewTable(catalogTableName, fitsColumns, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	for _, key := range table.Index {
		cells := make([]any, 0, len(columns))
		for _, column := range columns {
			var value types.Value
			if column.tag == catalogTargetTag {
				value = types.StringValue(key.String())
			} else {
				value = table.Get(key, column.tag)
			}
			cells = append(cells, column.cell(value))
		}
		if err := tbl.Write(cells...); err != nil {
			return fmt.Errorf("write row %s: %w", key, err)
		}
	}
	if err := f.Write(tbl); err != nil {
		return err
	}
	return f.Close()
}

// cell returns a pointer to the value encoded in the column's Go type.
// Undefined cells are NaN for numbers and blank for strings.
func (c catalogColumn) cell(value types.Value) any {
	ptr := reflect.New(c.gotype)
	switch c.gotype.Kind() {
	case reflect.Array:
		arr := ptr.Elem()
		for i := 0; i < arr.Len(); i++ {
			v := math.NaN()
			if value.Kind == types.ValueArray && i < len(value.Array) {
				v = value.Array[i]
			}
			arr.Index(i).SetFloat(v)
		}
	case reflect.String:
		s := ""
		switch value.Kind {
		case types.ValueString:
			s = value.Str
		case types.ValueFloat:
			s = strconv.FormatFloat(value.Float, 'g', -1, 64)
		}
		if c.width > 0 && len(s) > c.width {
			s = s[:c.width]
		}
		ptr.Elem().SetString(s)
	default:
		v := math.NaN()
		if value.Kind == types.ValueFloat {
			v = value.Float
		}
		ptr.Elem().SetFloat(v)
	}
	return ptr.Interface()
}

func catalogWriteError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to write catalog: " + path).
		WithCause(err)
}

// ReadCatalog loads a catalog written by WriteCatalog. Array columns
// are summarized by their count of finite samples.
func (a CatalogFitsAdapter) ReadCatalog(path string) (types.CatalogInfo, error) {
	f, err := openFITS(path)
	if err != nil {
		return types.CatalogInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(shared.KindMsg(types.KindPathNotFound, "cannot open catalog %s", path)).
			WithCause(err)
	}
	defer f.Close()

	info := types.CatalogInfo{
		Path:    path,
		Formats: map[string]types.TagFormat{},
	}
	if hdus := f.HDUs(); len(hdus) > 0 {
		info.RunID = headerString(hdus[0].Header(), catalogRunIDCard)
	}
	tbl := binaryTable(f.File, catalogTableExtNum)
	if tbl == nil || !hasColumn(tbl, catalogTargetTag) {
		return types.CatalogInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(shared.KindMsg(types.KindMalformedInputFile, "%s is not a master catalog", path))
	}
	for _, column := range tbl.Cols() {
		if column.Name == catalogTargetTag {
			continue
		}
		info.Columns = append(info.Columns, column.Name)
		info.Formats[column.Name] = storedFormat(column.Format)
	}

	rows, err := readRows(tbl)
	if err != nil {
		return types.CatalogInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(shared.KindMsg(types.KindMalformedInputFile, "cannot read catalog rows from %s", path)).
			WithCause(err)
	}
	for _, row := range rows {
		entry := types.CatalogRow{
			Target:  stringOf(row[catalogTargetTag]),
			Scalars: map[string]string{},
			Samples: map[string]int{},
		}
		for _, name := range info.Columns {
			format := info.Formats[name]
			switch {
			case format.IsArray():
				values, _ := floatsOf(row[name])
				entry.Samples[name] = countFinite(values)
			case format.IsString():
				entry.Scalars[name] = stringOf(row[name])
			default:
				if v, ok := floatOf(row[name]); ok && !math.IsNaN(v) {
					entry.Scalars[name] = strconv.FormatFloat(v, 'g', 10, 64)
				} else {
					entry.Scalars[name] = ""
				}
			}
		}
		info.Rows = append(info.Rows, entry)
	}
	return info, nil
}

// storedFormat maps a FITS TFORM back to a tag format: any repeated E
// is an array, string widths drop the write padding, other repeats are
// dropped.
func storedFormat(tform string) types.TagFormat {
	tform = strings.TrimSpace(strings.ToUpper(tform))
	code := strings.TrimLeft(tform, "0123456789")
	switch code {
	case "E":
		return "E"
	case "A":
		width, err := strconv.Atoi(strings.TrimSuffix(tform, code))
		if err != nil || width <= stringCellPad {
			return "1A"
		}
		return types.TagFormat(fmt.Sprintf("%dA", width-stringCellPad))
	default:
		return types.TagFormat(code)
	}
}

func countFinite(values []float64) int {
	n := 0
	for _, v := range values {
		if shared.IsFinite(v) {
			n++
		}
	}
	return n
}

var _ ports.CatalogWriterPort = CatalogFitsAdapter{}
var _ ports.CatalogReaderPort = CatalogFitsAdapter{}
