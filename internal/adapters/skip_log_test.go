package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splash-master/internal/types"
)

func TestSkipLogAdapter_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "log.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0644))

	skipLog, err := NewSkipLogAdapter(path, "run-1")
	require.NoError(t, err)
	require.NoError(t, skipLog.Record(types.SkipEntry{
		Path:   "/s/spec1d.m1.001.a.fits.gz",
		Reason: types.SkipTooFewExtensions,
		Detail: "has 3 extensions,\nneed 5",
	}))
	require.NoError(t, skipLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier run\nrun-1 /s/spec1d.m1.001.a.fits.gz TooFewExtensions: has 3 extensions, need 5\n", string(data))
}

func TestSkipLogAdapter_ConcurrentRecordsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	skipLog, err := NewSkipLogAdapter(path, "run-2")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, skipLog.Record(types.SkipEntry{
				Path:   fmt.Sprintf("/s/spec1d.m1.%03d.x.fits.gz", i),
				Reason: types.SkipMissingArmData,
				Detail: "red arm structure is missing",
			}))
		}(i)
	}
	wg.Wait()
	require.NoError(t, skipLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 32)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "run-2 /s/spec1d.m1."), line)
		assert.True(t, strings.HasSuffix(line, "MissingArmData: red arm structure is missing"), line)
	}
}

func TestSkipLogAdapter_RecordAfterCloseFails(t *testing.T) {
	skipLog, err := NewSkipLogAdapter(filepath.Join(t.TempDir(), "log.txt"), "run-3")
	require.NoError(t, err)
	require.NoError(t, skipLog.Close())
	require.NoError(t, skipLog.Close())
	assert.Error(t, skipLog.Record(types.SkipEntry{Path: "x"}))
}

func TestSkipLogAdapter_EmptyPathErrors(t *testing.T) {
	_, err := NewSkipLogAdapter(" ", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skip log path is empty")
}
