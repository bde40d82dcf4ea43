package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var (
	projectRootDir     string
	projectRootDirOnce sync.Once
)

// GetProjectRootDir returns the path as string to the project_root.
// PROJECT_ROOT_DIR wins, otherwise the location is derived from this source file.
func GetProjectRootDir() string {
	projectRootDirOnce.Do(func() {
		if val, ok := os.LookupEnv("PROJECT_ROOT_DIR"); ok {
			projectRootDir = val
			return
		}

		_, b, _, _ := runtime.Caller(0)
		projectRootDir = filepath.Join(filepath.Dir(b), "../..")
	})

	return projectRootDir
}

// RunningInTest returns true if the current binary is a `go test` binary.
func RunningInTest() bool {
	return strings.HasSuffix(os.Args[0], ".test") || flagLookupTest()
}

func flagLookupTest() bool {
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}
