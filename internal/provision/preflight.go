package provision

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Preflight errors. These are precondition violations: nothing has been
// attempted yet, the process exits 1 immediately.
var (
	ErrNotRoot   = errors.New("installer must run as root")
	ErrNotUbuntu = errors.New("installer requires Ubuntu")
)

// Preflight validates the environment before any step runs: effective
// UID 0 and an Ubuntu host per the os-release ID field.
func Preflight(osReleasePath string, euid int) error {
	if euid != 0 {
		return ErrNotRoot
	}

	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", osReleasePath, err)
	}

	if osReleaseID(string(data)) != "ubuntu" {
		return ErrNotUbuntu
	}

	return nil
}

// osReleaseID extracts the ID field from os-release content.
func osReleaseID(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "ID=") {
			continue
		}

		return strings.Trim(strings.TrimPrefix(line, "ID="), `"`)
	}

	return ""
}
