package app

import "splash-master/internal/types"

// TargetRequest names the spectra a run works on.
type TargetRequest struct {
	Spec1DPath     string
	Selection      types.SelectionMode
	Selectors      []string
	SubstructMasks []string
}

// GridRequest describes the rest-frame grid. Zero values take the
// survey defaults.
type GridRequest struct {
	LambdaMin  float64
	LambdaMax  float64
	LambdaStep float64
}

type ValidateRequest struct {
	Targets      TargetRequest
	Grid         GridRequest
	ZspecPath    string
	SerendipFile string
	Tags         []string
	TagSchemas   []string
}

type ValidateResult struct {
	Tags       []string
	GridPoints int
	Targets    int
	Masks      int
}

type SelectRequest struct {
	Targets TargetRequest
}

type SelectResult struct {
	Targets []types.Target
}

type BuildRequest struct {
	Targets      TargetRequest
	Grid         GridRequest
	ZspecPath    string
	SerendipFile string
	Tags         []string
	TagSchemas   []string
	Workers      int
	SkipLog      string
	Output       string
	Summary      string
}

type BuildResult struct {
	RunID   string
	Catalog string
	Summary types.RunSummary
	Table   *types.MasterTable
}

type InspectRequest struct {
	Catalog string
	Limit   int
}

type InspectResult struct {
	Catalog types.CatalogInfo
	Shown   int
}
