package core

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

type fakeDiscovery struct {
	paths []string
}

func (f fakeDiscovery) FindSpectra(string) ([]string, error) {
	return f.paths, nil
}

type fakeFieldTypes map[string]types.FieldType

func (f fakeFieldTypes) Classify(mask string) types.FieldType {
	if ft, ok := f[mask]; ok {
		return ft
	}
	return types.FieldTypeHalo
}

type fakeRedshiftSource struct {
	files map[string]types.RedshiftFile
	loads []string
}

func (f *fakeRedshiftSource) LoadMask(_ context.Context, _ string, mask string) (types.RedshiftFile, error) {
	f.loads = append(f.loads, mask)
	file, ok := f.files[mask]
	if !ok {
		return types.RedshiftFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(shared.KindMsg(types.KindMissingCounterpartFile, "zspec.%s.fits", mask))
	}
	return file, nil
}

type fakeSerendips map[string]float64

func (f fakeSerendips) LoadSerendips(context.Context, string) (map[string]float64, error) {
	return f, nil
}

type fakeSpectrumReader struct {
	files map[string]types.RawSpectrumFile
	panic map[string]bool
}

func (f fakeSpectrumReader) ReadSpectrum(_ context.Context, path string) (types.RawSpectrumFile, error) {
	if f.panic[path] {
		panic("corrupt table")
	}
	file, ok := f.files[path]
	if !ok {
		return types.RawSpectrumFile{}, fmt.Errorf("open %s: no such file", path)
	}
	return file, nil
}

type memorySkipLog struct {
	mu      sync.Mutex
	entries []types.SkipEntry
}

func (m *memorySkipLog) Record(entry types.SkipEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memorySkipLog) reasons() map[string]types.SkipReason {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]types.SkipReason{}
	for _, entry := range m.entries {
		out[entry.Path] = entry.Reason
	}
	return out
}

// linearArm samples a constant flux between lo and hi (inclusive) every
// step Angstrom.
func linearArm(lo, hi, step, flux, ivar float64) types.ArmReadout {
	n := int(math.Round((hi-lo)/step)) + 1
	arm := types.ArmReadout{
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

func wellFormedFile(path string) types.RawSpectrumFile {
	return types.RawSpectrumFile{
		Path:       path,
		Extensions: 5,
		Arms: map[int]types.ArmReadout{
			1: linearArm(4000, 7800, 0.5, 5, 4),
			2: linearArm(7790, 10500, 0.5, 5, 4),
		},
		Header: types.ObjectHeader{
			RA:       "00:42:44.3",
			Dec:      "+41:16:09",
			SlitPA:   12.5,
			ParAngle: -30,
			MaskRA:   "00:43:00.0",
			MaskDec:  "+41:00:00",
		},
	}
}
