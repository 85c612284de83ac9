package testutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// Arm is the content of one spectrum arm extension.
type Arm struct {
	Lambda []float64
	Flux   []float64
	IVar   []float64
}

// LinearArm samples a constant flux from lo to hi inclusive.
func LinearArm(lo, hi, step, flux, ivar float64) Arm {
	n := int(math.Round((hi-lo)/step)) + 1
	arm := Arm{
		Lambda: make([]float64, n),
		Flux:   make([]float64, n),
		IVar:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		arm.Lambda[i] = lo + step*float64(i)
		arm.Flux[i] = flux
		arm.IVar[i] = ivar
	}
	return arm
}

// Spec1D describes a spectrum file. Arms[i] is written to extension
// i+1; a nil arm becomes a table without arm columns. Extensions is the
// total HDU count including the primary and is padded with filler
// tables.
type Spec1D struct {
	Arms       []*Arm
	Extensions int
	Header     map[string]any
}

// WriteSpec1D writes a spectrum fixture; a .gz suffix gzips it.
func WriteSpec1D(t *testing.T, path string, spec Spec1D) string {
	t.Helper()
	writeFITS(t, path, func(f *fitsio.File) {
		total := spec.Extensions
		if total < len(spec.Arms)+1 {
			total = len(spec.Arms) + 1
		}
		for ext := 1; ext < total; ext++ {
			var arm *Arm
			if ext-1 < len(spec.Arms) {
				arm = spec.Arms[ext-1]
			}
			var cards map[string]any
			if ext == 1 {
				cards = spec.Header
			}
			if arm == nil {
				writeFiller(t, f, fmt.Sprintf("EXT%d", ext))
				continue
			}
			writeArm(t, f, fmt.Sprintf("EXT%d", ext), *arm, cards)
		}
	})
	return path
}

// ZspecRow is one redshift-fit row. Optional columns are written only
// when the corresponding With* flag of WriteZspec is set.
type ZspecRow struct {
	Spec1DFile string
	SlitName   string
	ObjName    string
	Z          float64
	Quality    int32
	SNR        float64
	ABand      float64
	MJD        float64
	Airmass    float64
}

type ZspecOptions struct {
	WithSpec1DFile bool
	WithOptional   bool
	// NulPadded stores SPEC1D_FILE as raw NUL-padded bytes, the way
	// IDL and C writers fill fixed-width strings.
	NulPadded bool
}

// String columns leave room for the NUL fitsio writes ahead of each
// string cell.
const (
	spec1dFileWidth = 40
	slitNameWidth   = 3
	objNameWidth    = 16
)

func stringColumn(name string, width int) fitsio.Column {
	return fitsio.Column{Name: name, Format: fmt.Sprintf("%dA", width+1)}
}

// WriteZspec writes dir/zspec.<mask>.fits.
func WriteZspec(t *testing.T, dir string, mask string, rows []ZspecRow, opts ZspecOptions) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("zspec.%s.fits", mask))
	writeFITS(t, path, func(f *fitsio.File) {
		var cols []fitsio.Column
		if opts.WithSpec1DFile {
			if opts.NulPadded {
				cols = append(cols, fitsio.Column{Name: "SPEC1D_FILE", Format: fmt.Sprintf("%dA", spec1dFileWidth)})
			} else {
				cols = append(cols, stringColumn("SPEC1D_FILE", spec1dFileWidth))
			}
		}
		cols = append(cols,
			stringColumn("SLITNAME", slitNameWidth),
			stringColumn("OBJNAME", objNameWidth),
			fitsio.Column{Name: "Z", Format: "D"},
			fitsio.Column{Name: "ZQUALITY", Format: "J"},
			fitsio.Column{Name: "SN", Format: "D"},
		)
		if opts.WithOptional {
			cols = append(cols,
				fitsio.Column{Name: "ABAND", Format: "D"},
				fitsio.Column{Name: "MJD", Format: "D"},
				fitsio.Column{Name: "AIRMASS", Format: "D"},
			)
		}
		tbl, err := fitsio.NewTable("ZSPEC", cols, fitsio.BINARY_TBL)
		require.NoError(t, err)
		defer tbl.Close()
		for _, row := range rows {
			var cells []any
			if opts.WithSpec1DFile {
				if opts.NulPadded {
					var raw [spec1dFileWidth]byte
					copy(raw[:], row.Spec1DFile)
					cells = append(cells, &raw)
				} else {
					cells = append(cells, &row.Spec1DFile)
				}
			}
			cells = append(cells, &row.SlitName, &row.ObjName, &row.Z, &row.Quality, &row.SNR)
			if opts.WithOptional {
				cells = append(cells, &row.ABand, &row.MJD, &row.Airmass)
			}
			require.NoError(t, tbl.Write(cells...))
		}
		require.NoError(t, f.Write(tbl))
	})
	return path
}

func writeFITS(t *testing.T, path string, body func(f *fitsio.File)) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	var w io.Writer = out
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(out)
		w = gz
	}
	f, err := fitsio.Create(w)
	require.NoError(t, err)
	primary, err := fitsio.NewPrimaryHDU(nil)
	require.NoError(t, err)
	require.NoError(t, f.Write(primary))
	body(f)
	require.NoError(t, f.Close())
	if gz != nil {
		require.NoError(t, gz.Close())
	}
}

func writeArm(t *testing.T, f *fitsio.File, name string, arm Arm, cards map[string]any) {
	t.Helper()
	n := len(arm.Lambda)
	tbl, err := fitsio.NewTable(name, []fitsio.Column{
		{Name: "LAMBDA", Format: fmt.Sprintf("%dD", n)},
		{Name: "SPEC", Format: fmt.Sprintf("%dE", n)},
		{Name: "IVAR", Format: fmt.Sprintf("%dE", n)},
	}, fitsio.BINARY_TBL)
	require.NoError(t, err)
	defer tbl.Close()
	for name, value := range cards {
		require.NoError(t, tbl.Header().Append(fitsio.Card{Name: name, Value: value}))
	}
	require.NoError(t, tbl.Write(
		vector(arm.Lambda, reflect.TypeOf(float64(0))),
		vector(arm.Flux, reflect.TypeOf(float32(0))),
		vector(arm.IVar, reflect.TypeOf(float32(0))),
	))
	require.NoError(t, f.Write(tbl))
}

func writeFiller(t *testing.T, f *fitsio.File, name string) {
	t.Helper()
	tbl, err := fitsio.NewTable(name, []fitsio.Column{{Name: "FLAG", Format: "D"}}, fitsio.BINARY_TBL)
	require.NoError(t, err)
	defer tbl.Close()
	flag := 0.0
	require.NoError(t, tbl.Write(&flag))
	require.NoError(t, f.Write(tbl))
}

// vector returns a pointer to a fixed-size array holding values.
func vector(values []float64, elem reflect.Type) any {
	ptr := reflect.New(reflect.ArrayOf(len(values), elem))
	arr := ptr.Elem()
	for i, v := range values {
		arr.Index(i).SetFloat(v)
	}
	return ptr.Interface()
}
