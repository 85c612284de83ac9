package adapters

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/shared"
	"splash-master/internal/types"
)

func TestCatalogFitsAdapter_RoundTrip(t *testing.T) {
	grid := types.WavelengthGrid{Min: 4000, Max: 4002, Step: 0.5, Points: []float64{4000, 4000.5, 4001, 4001.5}}
	a := types.IdentityKey{Mask: "m1", Slit: "001", Object: "starA"}
	b := types.IdentityKey{Mask: "m1", Slit: "002", Object: "starB"}
	table := types.NewMasterTable([]types.IdentityKey{a, b}, []string{types.TagSpec, types.TagZ, types.TagRA})
	table.Set(a, types.TagSpec, types.ArrayValue([]float64{1, 2, math.NaN(), 4}))
	table.Set(a, types.TagZ, types.FloatValue(0.002))
	table.Set(a, types.TagRA, types.StringValue("00:42:44.30"))
	table.Set(b, types.TagZ, types.FloatValue(-0.001))

	path := filepath.Join(t.TempDir(), "out", "master.fits")
	adapter := NewCatalogFitsAdapter()
	require.NoError(t, adapter.WriteCatalog(path, table, types.DefaultTagVocabulary(), grid, "run-42"))

	info, err := adapter.ReadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "run-42", info.RunID)
	assert.Equal(t, []string{types.TagSpec, types.TagZ, types.TagRA}, info.Columns)
	assert.Equal(t, map[string]types.TagFormat{
		types.TagSpec: "E",
		types.TagZ:    "D",
		types.TagRA:   "11A",
	}, info.Formats)

	want := []types.CatalogRow{
		{
			Target:  "m1.001.starA",
			Scalars: map[string]string{types.TagZ: "0.002", types.TagRA: "00:42:44.30"},
			Samples: map[string]int{types.TagSpec: 3},
		},
		{
			Target:  "m1.002.starB",
			Scalars: map[string]string{types.TagZ: "-0.001", types.TagRA: ""},
			Samples: map[string]int{types.TagSpec: 0},
		},
	}
	if diff := cmp.Diff(want, info.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestCatalogFitsAdapter_RejectsUnknownTag(t *testing.T) {
	table := types.NewMasterTable(nil, []string{"BOGUS"})
	err := NewCatalogFitsAdapter().WriteCatalog(filepath.Join(t.TempDir(), "m.fits"), table, types.DefaultTagVocabulary(), types.WavelengthGrid{}, "run")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, types.KindSchemaViolation))
}

func TestCatalogFitsAdapter_ReadMissingFile(t *testing.T) {
	_, err := NewCatalogFitsAdapter().ReadCatalog(filepath.Join(t.TempDir(), "absent.fits"))
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, types.KindPathNotFound))
}

func TestCatalogFitsAdapter_FullWidthStringsSurvive(t *testing.T) {
	grid := types.WavelengthGrid{Min: 4000, Max: 4001, Step: 0.5, Points: []float64{4000, 4000.5}}
	short := types.IdentityKey{Mask: "m1", Slit: "001", Object: "a"}
	long := types.IdentityKey{Mask: "m31disk", Slit: "104", Object: "serendip12"}
	table := types.NewMasterTable([]types.IdentityKey{short, long}, []string{types.TagRA})
	table.Set(short, types.TagRA, types.StringValue("00:42:44.30"))
	table.Set(long, types.TagRA, types.StringValue("00:42:44.3012"))

	path := filepath.Join(t.TempDir(), "master.fits")
	adapter := NewCatalogFitsAdapter()
	require.NoError(t, adapter.WriteCatalog(path, table, types.DefaultTagVocabulary(), grid, "run-1"))

	info, err := adapter.ReadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, types.TagFormat("11A"), info.Formats[types.TagRA])
	require.Len(t, info.Rows, 2)
	assert.Equal(t, "m1.001.a", info.Rows[0].Target)
	assert.Equal(t, "m31disk.104.serendip12", info.Rows[1].Target)
	assert.Equal(t, "00:42:44.30", info.Rows[0].Scalars[types.TagRA])
	// longer than the vocabulary width: cut to 11 characters
	assert.Equal(t, "00:42:44.30", info.Rows[1].Scalars[types.TagRA])
}

func TestStoredFormat(t *testing.T) {
	tests := []struct {
		tform string
		want  types.TagFormat
	}{
		{tform: "9230E", want: "E"},
		{tform: "D", want: "D"},
		{tform: "1D", want: "D"},
		{tform: "12A", want: "11A"},
		{tform: "1A", want: "1A"},
	}
	for _, tt := range tests {
		t.Run(tt.tform, func(t *testing.T) {
			assert.Equal(t, tt.want, storedFormat(tt.tform))
		})
	}
}
