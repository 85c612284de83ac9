package types

// ArmReadout is the structured data of one detector arm extension.
type ArmReadout struct {
	Lambda []float64
	Flux   []float64
	IVar   []float64
}

func (a ArmReadout) Empty() bool {
	return len(a.Lambda) == 0 || len(a.Flux) == 0 || len(a.IVar) == 0
}

// ObjectHeader holds the header cards copied from the first arm
// extension. Missing numeric cards are NaN, missing strings empty.
type ObjectHeader struct {
	RA       string
	Dec      string
	SlitPA   float64
	ParAngle float64
	MaskRA   string
	MaskDec  string
}

// RawSpectrumFile is a decoded spectrum file. Arms is keyed by HDU
// index and only holds extensions that carry structured arm data.
type RawSpectrumFile struct {
	Path       string
	Extensions int
	Arms       map[int]ArmReadout
	Header     ObjectHeader
}

// WavelengthGrid is the fixed rest-frame grid shared by a run.
type WavelengthGrid struct {
	Min    float64
	Max    float64
	Step   float64
	Points []float64
}

func (g WavelengthGrid) Len() int {
	return len(g.Points)
}

type RebinnedSpectrum struct {
	Key        IdentityKey
	Path       string
	Lambda     []float64
	Flux       []float64
	IVar       []float64
	FluxNorm   []float64
	IVarNorm   []float64
	NormFactor float64
	Header     ObjectHeader
	RADeg      float64
	DecDeg     float64
	MaskRADeg  float64
	MaskDecDeg float64
}

// SkipEntry is one diagnostic log line for a target dropped by the
// rebinner.
type SkipEntry struct {
	Path   string
	Reason SkipReason
	Detail string
}
