package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// userHomeDirFunc allows mocking the home directory in tests
var userHomeDirFunc = os.UserHomeDir

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := userHomeDirFunc()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// IsConnString reports whether s looks like a PostgreSQL connection string
// rather than a filesystem path.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://") ||
		(strings.Contains(s, "host=") && strings.Contains(s, "dbname="))
}
