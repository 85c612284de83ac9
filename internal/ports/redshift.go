package ports

import (
	"context"

	"splash-master/internal/types"
)

// RedshiftSourcePort loads the redshift-fit table of one mask.
type RedshiftSourcePort interface {
	// LoadMask reads zspec.<mask>.fits from dir. A missing file fails with
	// a missing-counterpart error, an unreadable one with a
	// malformed-input error.
	LoadMask(ctx context.Context, dir string, mask string) (types.RedshiftFile, error)
}

// SerendipSourcePort loads the serendipitous-detection lookup table,
// keyed by spectrum file name.
type SerendipSourcePort interface {
	LoadSerendips(ctx context.Context, path string) (map[string]float64, error)
}
