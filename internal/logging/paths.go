package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.interlog/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".interlog", "logs")
	}
	return filepath.Join(home, ".interlog", "logs")
}

// DefaultLogPath returns the default tool log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "interlog.log")
}
