package file

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "values.yaml")

	t.Run("Create file", func(t *testing.T) {
		require.NoError(t, WriteAtomic(target, []byte("a: 1\n"), 0600))
		require.True(t, Exists(target))
	})

	t.Run("Overwrite file", func(t *testing.T) {
		require.NoError(t, WriteAtomic(target, []byte("a: 2\n"), 0600))
		data, err := ioutil.ReadFile(target)
		require.NoError(t, err)
		require.Equal(t, "a: 2\n", string(data))

		entries, err := ioutil.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1) //no temporary leftovers
	})

	t.Run("Remove missing file", func(t *testing.T) {
		require.NoError(t, RemoveIfExists(target))
		require.False(t, Exists(target))
		require.NoError(t, RemoveIfExists(target))
	})
}
