package types

// RedshiftRow is one row of a per-mask redshift-fit table. Optional
// columns absent from the file decode as NaN.
type RedshiftRow struct {
	Spec1DFile string
	SlitName   string
	ObjName    string
	Z          float64
	Quality    Quality
	SNR        float64
	ABand      float64
	MJD        float64
	Airmass    float64
}

// RedshiftFile is the decoded content of zspec.<mask>.fits.
type RedshiftFile struct {
	Mask          string
	Path          string
	HasSpec1DFile bool
	Rows          []RedshiftRow
}

// HasManualSentinel reports whether any row carries the -1 quality used
// to mark manual redshift determinations.
func (f RedshiftFile) HasManualSentinel() bool {
	for _, row := range f.Rows {
		if row.Quality == QualityManualSentinel {
			return true
		}
	}
	return false
}

// RedshiftRecord is the resolved redshift metadata of one target.
// Undefined numeric fields are NaN; HasQuality is false when no
// counterpart was found at all.
type RedshiftRecord struct {
	Key        IdentityKey
	Path       string
	Source     MatchSource
	Z          float64
	Quality    Quality
	HasQuality bool
	SNR        float64
	ABand      float64
	MJD        float64
	Airmass    float64
}
