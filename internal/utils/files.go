package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Standard default permissions
// File: u=rw, g=rw, o=r
const PermFile os.FileMode = 0664

// Exec: u=rwx, g=rwx, o=rx (submission scripts)
const PermExec os.FileMode = 0775

// GaussianExtensions lists the accepted input file extensions.
var GaussianExtensions = []string{"com", "gjf"}

// SplitInputName splits "water.com" into ("water", "com").
// ok is false unless the name carries exactly one "." with text on both sides.
func SplitInputName(path string) (stem, ext string, ok bool) {
	base := filepath.Base(path)
	parts := strings.Split(base, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	dir := filepath.Dir(path)
	if dir != "." {
		parts[0] = filepath.Join(dir, parts[0])
	}
	return parts[0], parts[1], true
}

// IsGaussianExt checks if ext (without the dot) is an accepted input extension.
func IsGaussianExt(ext string) bool {
	for _, e := range GaussianExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FileExists checks if a file exists and is not a directory.
func FileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
