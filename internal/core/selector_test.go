package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/policies"
	"splash-master/internal/shared"
	"splash-master/internal/types"
)

func selectorFor(t *testing.T, names ...string) (TargetSelector, string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return NewTargetSelector(fakeDiscovery{paths: paths}, policies.NewFieldTypePolicy(nil)), dir
}

func selectedKeys(targets []types.Target) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		out = append(out, target.Key.String())
	}
	return out
}

func TestSelectByFieldType(t *testing.T) {
	selector, dir := selectorFor(t,
		"spec1d.d1.001.a.fits.gz",
		"spec1d.nw2V_1.002.b.fits.gz",
		"spec1d.n147.003.c.fits.gz",
	)
	targets, err := selector.Select(context.Background(), dir, types.Selection{
		Mode:   types.SelectionFieldType,
		Values: []string{"dsph"},
	})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"d1.001.a"}, selectedKeys(targets)); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
	assert.Equal(t, types.FieldTypeDSph, targets[0].FieldType)
}

func TestSelectAllSortsAndDeduplicates(t *testing.T) {
	selector, dir := selectorFor(t,
		"spec1d.m2.001.b.fits.gz",
		"spec1d.m1.7.a.fits",
		"spec1d.m1.007.a.fits.gz",
		"notes.fits.txt",
	)
	targets, err := selector.Select(context.Background(), dir, types.Selection{Mode: types.SelectionAll})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"m1.007.a", "m2.001.b"}, selectedKeys(targets)); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(dir, "spec1d.m1.007.a.fits.gz"), targets[0].Path)
}

func TestSelectByMasksAndFields(t *testing.T) {
	selector, dir := selectorFor(t,
		"spec1d.H11_1.001.a.fits.gz",
		"spec1d.H11_2.002.b.fits.gz",
		"spec1d.H13_1.003.c.fits.gz",
	)

	targets, err := selector.Select(context.Background(), dir, types.Selection{
		Mode:   types.SelectionMasks,
		Values: []string{"H11_2", "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"H11_2.002.b"}, selectedKeys(targets))

	targets, err = selector.Select(context.Background(), dir, types.Selection{
		Mode:   types.SelectionFields,
		Values: []string{"h11"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"H11_1.001.a", "H11_2.002.b"}, selectedKeys(targets))
}

func TestValidateSelection(t *testing.T) {
	valid := []types.Selection{
		{Mode: types.SelectionAll},
		{Mode: types.SelectionMasks, Values: []string{"m1"}},
		{Mode: types.SelectionFieldType, Values: []string{"Halo", "de"}},
	}
	for _, sel := range valid {
		require.NoError(t, ValidateSelection(sel), sel.Mode)
	}

	invalid := []types.Selection{
		{Mode: "bogus", Values: []string{"x"}},
		{Mode: types.SelectionAll, Values: []string{"m1"}},
		{Mode: types.SelectionMasks},
		{Mode: types.SelectionFields, Values: []string{" "}},
		{Mode: types.SelectionFieldType, Values: []string{"bulge"}},
	}
	for _, sel := range invalid {
		err := ValidateSelection(sel)
		require.Error(t, err, sel.Mode)
		assert.True(t, shared.IsKind(err, types.KindInvalidSelection), sel.Mode)
	}
}

func TestSelectRequiresExistingDirectory(t *testing.T) {
	selector := NewTargetSelector(fakeDiscovery{}, policies.NewFieldTypePolicy(nil))
	_, err := selector.Select(context.Background(), filepath.Join(t.TempDir(), "absent"), types.Selection{Mode: types.SelectionAll})
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, types.KindPathNotFound))
}
