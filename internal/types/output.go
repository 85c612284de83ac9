package types

// RunSummary is written next to the catalog after a build.
type RunSummary struct {
	RunID      string         `yaml:"run_id"`
	CreatedAt  string         `yaml:"created_at"`
	Selection  SelectionMode  `yaml:"selection"`
	Selectors  []string       `yaml:"selectors,omitempty"`
	Targets    int            `yaml:"targets"`
	Matched    int            `yaml:"matched"`
	Serendips  int            `yaml:"serendips"`
	Unmatched  int            `yaml:"unmatched"`
	Rebinned   int            `yaml:"rebinned"`
	Skipped    map[string]int `yaml:"skipped,omitempty"`
	GridPoints int            `yaml:"grid_points"`
	Columns    []string       `yaml:"columns"`
	Catalog    string         `yaml:"catalog,omitempty"`
}

// CatalogInfo describes a catalog file read back for inspection.
type CatalogInfo struct {
	Path    string
	RunID   string
	Columns []string
	Formats map[string]TagFormat
	Rows    []CatalogRow
}

// CatalogRow holds the scalar cells of one catalog row plus the number
// of finite samples in each array column.
type CatalogRow struct {
	Target  string
	Scalars map[string]string
	Samples map[string]int
}
