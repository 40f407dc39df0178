// Package local_test tests the local filesystem blob store.
package local_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/snowcourse-crawler/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		tempDir := t.TempDir()
		store, err := local.New(local.Config{BaseDir: tempDir})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("CreatesMissingDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "testfile")
		require.NoError(t, os.WriteFile(tempFile, []byte("x"), 0o600))

		_, err := local.New(local.Config{BaseDir: tempFile})
		assert.Error(t, err)
	})

	t.Run("BaseDirNotWritable", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced for root")
		}
		tempDir := t.TempDir()
		// #nosec G302 -- directory permissions adjusted intentionally for test coverage.
		require.NoError(t, os.Chmod(tempDir, 0o500))
		t.Cleanup(func() {
			// #nosec G302 -- reverting permissions to allow cleanup in the test environment.
			_ = os.Chmod(tempDir, 0o700)
		})

		_, err := local.New(local.Config{BaseDir: tempDir})
		assert.Error(t, err)
	})
}

func TestPutObject(t *testing.T) {
	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	t.Run("ValidPut", func(t *testing.T) {
		path := "colorado_snow_data.csv"
		data := "water_year,station\n1951,05K08\n"
		uri, err := store.PutObject(context.Background(), path, "text/csv", strings.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.Join(tempDir, path), uri)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(filepath.Join(tempDir, path))
		require.NoError(t, err)
		assert.Equal(t, data, string(readData))
	})

	t.Run("Overwrite", func(t *testing.T) {
		path := "out.csv"
		_, err := store.PutObject(context.Background(), path, "text/csv", strings.NewReader("first"))
		require.NoError(t, err)
		_, err = store.PutObject(context.Background(), path, "text/csv", strings.NewReader("second"))
		require.NoError(t, err)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(filepath.Join(tempDir, path))
		require.NoError(t, err)
		assert.Equal(t, "second", string(readData))
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "", "text/csv", strings.NewReader("data"))
		assert.Error(t, err)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		_, err := store.PutObject(context.Background(), "../escape.csv", "text/csv", strings.NewReader("data"))
		assert.ErrorContains(t, err, "path traversal")
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.PutObject(ctx, "late.csv", "text/csv", strings.NewReader("data"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NestedPath", func(t *testing.T) {
		path := "exports/co/object.csv"
		uri, err := store.PutObject(context.Background(), path, "text/csv", strings.NewReader("nested"))
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.Join(tempDir, path), uri)
	})
}

func TestNewRelativeBaseDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	store, err := local.New(local.Config{BaseDir: "."})
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "colorado_snow_data.csv", "text/csv", strings.NewReader("ok"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(uri, string(filepath.Separator)+"colorado_snow_data.csv"))
	_, err = os.Stat(filepath.Join(dir, "colorado_snow_data.csv"))
	assert.NoError(t, err)
}
