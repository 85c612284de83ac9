package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/types"
)

func TestSummaryFileAdapter_WritesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.yaml")
	summary := types.RunSummary{
		RunID:      "run-1",
		CreatedAt:  "2026-01-02T03:04:05Z",
		Selection:  types.SelectionFieldType,
		Selectors:  []string{"dsph"},
		Targets:    3,
		Matched:    2,
		Serendips:  1,
		Rebinned:   2,
		Skipped:    map[string]int{string(types.SkipTooFewExtensions): 1},
		GridPoints: 9230,
		Columns:    []string{"LBIN", "SPEC"},
		Catalog:    "master.fits",
	}

	adapter := NewSummaryFileAdapter()
	require.NoError(t, adapter.WriteSummary(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "run_id: run-1"))
	assert.True(t, strings.Contains(string(data), "TooFewExtensions: 1"))

	got, err := adapter.ReadSummary(path)
	require.NoError(t, err)
	if diff := cmp.Diff(summary, got); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
}

func TestSummaryFileAdapter_EmptyPathErrors(t *testing.T) {
	err := NewSummaryFileAdapter().WriteSummary("", types.RunSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary path is empty")
}

func TestSummaryFileAdapter_NormalizesCreatedAt(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "offset", input: "2026-01-02T05:04:05+02:00", expected: "2026-01-02T03:04:05Z"},
		{name: "nanoseconds", input: "2026-01-02T03:04:05.123Z", expected: "2026-01-02T03:04:05Z"},
		{name: "plain datetime", input: "2026-01-02 03:04:05", expected: "2026-01-02T03:04:05Z"},
		{name: "unparseable kept", input: "yesterday", expected: "yesterday"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("summary-%d.yaml", i))
			require.NoError(t, os.WriteFile(path, []byte("run_id: r\ncreated_at: \""+tt.input+"\"\n"), 0644))
			got, err := NewSummaryFileAdapter().ReadSummary(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.CreatedAt)
		})
	}
}
