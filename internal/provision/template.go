package provision

import (
	"bytes"
	"fmt"
	"os"
)

// NeedsWrite reports whether path is missing or its content differs
// byte-for-byte from content.
func NeedsWrite(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	return !bytes.Equal(existing, content), nil
}

// WriteFileIfChanged writes content to path with the given mode unless
// the file already holds exactly that content. It reports whether a
// write happened. Comparing before overwriting keeps rendered config and
// unit files idempotent across installer runs.
func WriteFileIfChanged(path string, content []byte, mode os.FileMode) (bool, error) {
	needed, err := NeedsWrite(path, content)
	if err != nil {
		return false, err
	}

	if !needed {
		return false, nil
	}

	if err := os.WriteFile(path, content, mode); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	// WriteFile only applies the mode on creation.
	if err := os.Chmod(path, mode); err != nil {
		return false, fmt.Errorf("setting mode on %s: %w", path, err)
	}

	return true, nil
}
