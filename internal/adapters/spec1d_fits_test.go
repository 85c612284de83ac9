package adapters

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/testutil"
)

func TestSpec1DFitsAdapter_ReadsArmsAndHeader(t *testing.T) {
	blue := testutil.LinearArm(4000, 4010, 1, 2, 3)
	red := testutil.LinearArm(7800, 7805, 1, 4, 5)
	path := testutil.WriteSpec1D(t, filepath.Join(t.TempDir(), "spec1d.m1.001.starA.fits.gz"), testutil.Spec1D{
		Arms:       []*testutil.Arm{&blue, &red},
		Extensions: 5,
		Header: map[string]any{
			"RA_OBJ":  "00:42:44.30",
			"DEC_OBJ": "+41:16:09.0",
			"SLITPA":  12.5,
			"PARANG":  -30.0,
			"RA":      "00:43:00.00",
			"DEC":     "+41:00:00.0",
		},
	})

	spectrum, err := NewSpec1DFitsAdapter().ReadSpectrum(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, spectrum.Extensions)
	require.Contains(t, spectrum.Arms, 1)
	require.Contains(t, spectrum.Arms, 2)
	assert.NotContains(t, spectrum.Arms, 3)
	assert.Equal(t, blue.Lambda, spectrum.Arms[1].Lambda)
	assert.Equal(t, red.Flux, spectrum.Arms[2].Flux)
	assert.Equal(t, red.IVar, spectrum.Arms[2].IVar)

	assert.Equal(t, "00:42:44.30", spectrum.Header.RA)
	assert.Equal(t, "+41:16:09.0", spectrum.Header.Dec)
	assert.Equal(t, 12.5, spectrum.Header.SlitPA)
	assert.Equal(t, -30.0, spectrum.Header.ParAngle)
	assert.Equal(t, "00:43:00.00", spectrum.Header.MaskRA)
	assert.Equal(t, "+41:00:00.0", spectrum.Header.MaskDec)
}

func TestSpec1DFitsAdapter_UncompressedAndMissingCards(t *testing.T) {
	blue := testutil.LinearArm(4000, 4002, 1, 1, 1)
	path := testutil.WriteSpec1D(t, filepath.Join(t.TempDir(), "spec1d.m1.002.starB.fits"), testutil.Spec1D{
		Arms:       []*testutil.Arm{&blue, nil},
		Extensions: 3,
	})

	spectrum, err := NewSpec1DFitsAdapter().ReadSpectrum(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, spectrum.Extensions)
	assert.Contains(t, spectrum.Arms, 1)
	assert.NotContains(t, spectrum.Arms, 2)
	assert.Empty(t, spectrum.Header.RA)
	assert.True(t, math.IsNaN(spectrum.Header.SlitPA))
}

func TestSpec1DFitsAdapter_UnreadableFileErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "spec1d.m1.003.bad.fits")
	require.NoError(t, os.WriteFile(garbage, []byte("not a fits file"), 0644))

	adapter := NewSpec1DFitsAdapter()
	_, err := adapter.ReadSpectrum(context.Background(), garbage)
	require.Error(t, err)
	_, err = adapter.ReadSpectrum(context.Background(), filepath.Join(dir, "absent.fits"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open spectrum file")
}
