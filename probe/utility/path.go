package utility

import (
	"os"
	"path/filepath"
)

// GetProjectRoot returns the directory of the running executable, which is
// where the BPF tap object is deployed alongside the binary.
func GetProjectRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
