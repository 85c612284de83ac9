package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"splash-master/internal/ports"
)

const spectrumPrefix = "spec1d."

type SpectraDirAdapter struct{}

func NewSpectraDirAdapter() SpectraDirAdapter {
	return SpectraDirAdapter{}
}

// FindSpectra lists the spec1d files directly inside dir. Subdirectories
// and hidden files are ignored.
func (a SpectraDirAdapter) FindSpectra(dir string) ([]string, error) {
	if dir == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("spectrum directory is empty")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan spectrum directory").
			WithCause(err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || shouldSkipSpectrumFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

func shouldSkipSpectrumFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return !strings.HasPrefix(name, spectrumPrefix) || !strings.Contains(name, ".fits")
}

var _ ports.SpectrumDiscoveryPort = SpectraDirAdapter{}
