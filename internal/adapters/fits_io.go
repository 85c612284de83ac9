package adapters

import (
	"bufio"
	"io"
	"math"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"
)

// fitsHandle keeps every reader behind an open FITS file so they are
// closed together.
type fitsHandle struct {
	*fitsio.File
	closers []io.Closer
}

func (h *fitsHandle) Close() error {
	var first error
	if h.File != nil {
		first = h.File.Close()
	}
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openFITS opens a FITS file, transparently decompressing gzip content.
func openFITS(path string) (*fitsHandle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	handle := &fitsHandle{closers: []io.Closer{file}}
	buffered := bufio.NewReader(file)
	var r io.Reader = buffered
	if magic, err := buffered.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			_ = handle.Close()
			return nil, err
		}
		handle.closers = append(handle.closers, gz)
		r = gz
	}
	f, err := fitsio.Open(r)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	handle.File = f
	return handle, nil
}

// binaryTable returns HDU i as a table, or nil when it is absent or not
// a table.
func binaryTable(f *fitsio.File, i int) *fitsio.Table {
	hdus := f.HDUs()
	if i < 0 || i >= len(hdus) {
		return nil
	}
	table, ok := hdus[i].(*fitsio.Table)
	if !ok {
		return nil
	}
	return table
}

func hasColumn(table *fitsio.Table, name string) bool {
	return table.Index(name) >= 0
}

// readRows scans every row of a table into column-name keyed maps.
func readRows(table *fitsio.Table) ([]map[string]any, error) {
	rows, err := table.Read(0, table.NumRows())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []map[string]any
	for rows.Next() {
		row := map[string]any{}
		if err := rows.Scan(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// floatOf converts any numeric cell or header value to float64.
func floatOf(v any) (float64, bool) {
	if v == nil {
		return math.NaN(), false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Array, reflect.Slice:
		if rv.Len() == 1 {
			return floatOf(rv.Index(0).Interface())
		}
	}
	return math.NaN(), false
}

// floatsOf converts a vector cell to []float64.
func floatsOf(v any) ([]float64, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		out := make([]float64, rv.Len())
		for i := range out {
			f, ok := floatOf(rv.Index(i).Interface())
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		f, ok := floatOf(v)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
}

// stringOf decodes a string cell or card. Fixed-width FITS strings may
// be padded with spaces or NULs on either side.
func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return trimCell(s)
	case []byte:
		return trimCell(string(s))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		buf := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(buf), rv)
		return trimCell(string(buf))
	}
	return ""
}

func trimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}

// headerFloat reads a numeric card, NaN when absent.
func headerFloat(hdr *fitsio.Header, name string) float64 {
	card := hdr.Get(name)
	if card == nil {
		return math.NaN()
	}
	f, _ := floatOf(card.Value)
	return f
}

// headerString reads a string card, empty when absent.
func headerString(hdr *fitsio.Header, name string) string {
	card := hdr.Get(name)
	if card == nil {
		return ""
	}
	return stringOf(card.Value)
}
