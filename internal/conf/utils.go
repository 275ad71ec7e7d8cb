// utils.go: OS specific configuration path helpers
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rcanovic/restaurant-reviews/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the default configuration paths for the
// current operating system, in lookup order.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	// Fetch the directory of the executable.
	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	// Fetch the user's home directory.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	// Define default paths based on the operating system.
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "restaurant-reviews"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "restaurant-reviews"),
			exeDir,
		}
	}

	return configPaths, nil
}
