package utils

import (
	"path/filepath"
	"runtime"
)

// ResolveFile returns the path of the given file relative to the root of the module. For example,
// "etc/configs/table.json" resolves to that file no matter which package the caller lives in.
func ResolveFile(fn string) string {
	//nolint:dogsled
	_, thisFilePath, _, _ := runtime.Caller(0)
	thisDirPath, err := filepath.Abs(filepath.Dir(thisFilePath))
	if err != nil {
		panic(err)
	}
	return filepath.Join(thisDirPath, "..", fn)
}
