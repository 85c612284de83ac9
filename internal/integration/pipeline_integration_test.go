package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/adapters"
	"splash-master/internal/core"
	"splash-master/internal/policies"
	"splash-master/internal/testutil"
	"splash-master/internal/types"
)

// TestPipelineIntegration runs selector, resolver, rebinner, assembler
// and the catalog writer on real FITS files.
func TestPipelineIntegration(t *testing.T) {
	root := t.TempDir()
	spec1d := filepath.Join(root, "spec1d")
	zspec := filepath.Join(root, "zspec")
	require.NoError(t, os.MkdirAll(spec1d, 0755))
	require.NoError(t, os.MkdirAll(zspec, 0755))
	header := map[string]any{"RA_OBJ": "00:42:44.3", "DEC_OBJ": "+41:16:09", "SLITPA": 10.0, "PARANG": 5.0}

	blue := testutil.LinearArm(4000, 7800, 0.5, 5, 4)
	red := testutil.LinearArm(7790, 10500, 0.5, 5, 4)
	testutil.WriteSpec1D(t, filepath.Join(spec1d, "spec1d.d1.001.starA.fits.gz"), testutil.Spec1D{
		Arms: []*testutil.Arm{&blue, &red}, Extensions: 5, Header: header,
	})
	// ext 2 repeats the blue range so the red arm comes from ext 3
	redFallback := testutil.LinearArm(7790, 10500, 0.5, 7, 4)
	testutil.WriteSpec1D(t, filepath.Join(spec1d, "spec1d.d1.002.starB.fits"), testutil.Spec1D{
		Arms: []*testutil.Arm{&blue, &blue, &redFallback}, Extensions: 5, Header: header,
	})
	testutil.WriteSpec1D(t, filepath.Join(spec1d, "spec1d.d1.003.serendip1.fits.gz"), testutil.Spec1D{
		Arms: []*testutil.Arm{&blue, nil}, Extensions: 5, Header: header,
	})
	// halo mask, excluded by the dsph selection
	testutil.WriteSpec1D(t, filepath.Join(spec1d, "spec1d.a0_1.001.starH.fits.gz"), testutil.Spec1D{
		Arms: []*testutil.Arm{&blue, &red}, Extensions: 5, Header: header,
	})

	testutil.WriteZspec(t, zspec, "d1", []testutil.ZspecRow{
		{Spec1DFile: "spec1d.d1.001.starA.fits.gz", Z: 0.001, Quality: 4, SNR: 20, ABand: 0.5, MJD: 55000, Airmass: 1.1},
		{Spec1DFile: "spec1d.d1.002.starB.fits.gz", Z: 0.0, Quality: -1, SNR: 3, ABand: 0.1, MJD: 55000, Airmass: 1.2},
	}, testutil.ZspecOptions{WithSpec1DFile: true, WithOptional: true})
	serendips := testutil.WriteFile(t, root, "serendips.txt", "spec1d.d1.003.serendip1.fits.gz 0.0012\n")

	ctx := t.Context()
	selector := core.NewTargetSelector(adapters.NewSpectraDirAdapter(), policies.NewFieldTypePolicy(nil))
	targets, err := selector.Select(ctx, spec1d, types.Selection{Mode: types.SelectionFieldType, Values: []string{"dsph"}})
	require.NoError(t, err)
	require.Len(t, targets, 3)

	tags := []string{types.TagSpec, types.TagZ, types.TagZQual, types.TagMJD, types.TagPosA}
	vocab := types.DefaultTagVocabulary()
	require.NoError(t, core.ValidateTags(vocab, tags))
	grid, err := core.NewGrid(4000, 10000, 0.65)
	require.NoError(t, err)

	redshifts, err := core.NewRedshiftResolver(adapters.NewZspecFitsAdapter(), adapters.NewSerendipFileAdapter()).
		Resolve(ctx, zspec, targets, tags, serendips)
	require.NoError(t, err)
	matched, serendipCount, unmatched := redshifts.Counts()
	assert.Equal(t, []int{2, 1, 0}, []int{matched, serendipCount, unmatched})

	skipPath := filepath.Join(root, "log.txt")
	skipLog, err := adapters.NewSkipLogAdapter(skipPath, "it-run")
	require.NoError(t, err)
	spectra, err := core.NewRebinner(adapters.NewSpec1DFitsAdapter(), skipLog, core.DefaultRebinOptions()).
		Rebin(ctx, targets, redshifts, grid, tags)
	require.NoError(t, err)
	require.NoError(t, skipLog.Close())
	if diff := cmp.Diff(map[types.SkipReason]int{types.SkipMissingArmData: 1}, spectra.Skipped); diff != "" {
		t.Fatalf("unexpected skips (-want +got):\n%s", diff)
	}

	table, err := core.NewMasterAssembler(vocab).Assemble(ctx, targets, tags,
		core.NewIdentitySource(targets), redshifts, spectra)
	require.NoError(t, err)

	starB := types.IdentityKey{Mask: "d1", Slit: "002", Object: "starB"}
	flux := table.Get(starB, types.TagSpec).Array
	require.Len(t, flux, grid.Len())
	// 9000 A sits in the fallback red arm
	assert.InDelta(t, 7.0, flux[int((9000-grid.Min)/grid.Step)], 1e-9)
	assert.InDelta(t, 5.0, flux[100], 1e-9)
	assert.Equal(t, -1.0, table.Get(starB, types.TagZQual).Float)
	assert.Equal(t, 55000.0, table.Get(starB, types.TagMJD).Float)
	assert.InDelta(t, 10.0, table.Get(starB, types.TagPosA).Float, 1e-9)

	serendip := types.IdentityKey{Mask: "d1", Slit: "003", Object: "serendip1"}
	assert.Equal(t, 0.0012, table.Get(serendip, types.TagZ).Float)
	assert.False(t, table.Get(serendip, types.TagSpec).Defined())

	catalog := filepath.Join(root, "master.fits")
	writer := adapters.NewCatalogFitsAdapter()
	require.NoError(t, writer.WriteCatalog(catalog, table, vocab, grid, "it-run"))
	info, err := writer.ReadCatalog(catalog)
	require.NoError(t, err)
	assert.Equal(t, tags, info.Columns)
	require.Len(t, info.Rows, 3)
	assert.Equal(t, grid.Len(), info.Rows[0].Samples[types.TagSpec])
	assert.Equal(t, "0.0012", info.Rows[2].Scalars[types.TagZ])

	skips, err := os.ReadFile(skipPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(skips), "it-run "))
	assert.Contains(t, string(skips), "MissingArmData")
}
