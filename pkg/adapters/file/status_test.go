package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dsg/pkg/adapters/file"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFile_WriteRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "status.json")
	f := file.NewStatusFile(path)

	idle, err := f.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, idle.Status)

	want := domain.Progress{Status: domain.StatusWorking, StartTime: 1700000000.25, ProcessedBuffers: 10, TotalBuffers: 42}
	require.NoError(t, f.WriteStatus(ctx, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"working","start_time":1700000000.25,"processed_buffers":10,"total_buffers":42}`, string(raw))

	got, err := f.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("Overwrite Leaves No Temp Files", func(t *testing.T) {
		require.NoError(t, f.WriteStatus(ctx, domain.Progress{Status: domain.StatusIdle}))
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestStatusFile_EmptyPath(t *testing.T) {
	err := file.NewStatusFile("").WriteStatus(context.Background(), domain.Progress{})
	assert.Error(t, err)
}

func TestStatusFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := file.NewStatusFile(path).ReadStatus(context.Background())
	assert.Error(t, err)
}
