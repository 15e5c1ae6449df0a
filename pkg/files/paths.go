package file

import (
	"os"
	"path/filepath"
	"runtime"
)

//Root is the project directory, resolved relative to this source file
var Root = func() string {
	_, self, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(self), "..", "..")
}()

//Exists is true for regular files (directories don't count)
func Exists(path string) bool {
	stats, err := os.Stat(path)
	return err == nil && !stats.IsDir()
}

func DirExists(path string) bool {
	stats, err := os.Stat(path)
	return err == nil && stats.IsDir()
}

//Resolve joins relative paths with baseDir. Empty and absolute paths are returned unchanged.
func Resolve(baseDir, path string) string {
	if baseDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
