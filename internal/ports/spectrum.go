package ports

import (
	"context"

	"splash-master/internal/types"
)

// SpectrumReaderPort decodes one raw spectrum file. Errors mean the file
// could not be read at all; missing arms are reported through the
// returned structure, not as errors.
type SpectrumReaderPort interface {
	ReadSpectrum(ctx context.Context, path string) (types.RawSpectrumFile, error)
}

// SpectrumDiscoveryPort lists candidate raw spectrum files in a
// directory.
type SpectrumDiscoveryPort interface {
	FindSpectra(dir string) ([]string, error)
}
