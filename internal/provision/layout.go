package provision

import (
	"context"
	"fmt"
	"os"
)

// LayoutStep creates the install root and its fixed subdirectories:
// config, backups, logs, bin, and src.
type LayoutStep struct{}

func (LayoutStep) Name() string { return "filesystem-layout" }

func (LayoutStep) Needed(_ context.Context, st *State) (bool, error) {
	for _, dir := range layoutDirs(st) {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}

			return false, fmt.Errorf("checking %s: %w", dir, err)
		}
	}

	return false, nil
}

func (LayoutStep) Apply(_ context.Context, st *State) error {
	for _, dir := range layoutDirs(st) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	// The config dir holds key material and generated passwords.
	if err := os.Chmod(st.ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("restricting %s: %w", st.ConfigDir(), err)
	}

	return nil
}

func layoutDirs(st *State) []string {
	return []string{
		st.Cfg.InstallRoot,
		st.ConfigDir(),
		st.BackupsDir(),
		st.LogsDir(),
		st.BinDir(),
		st.SrcDir(),
	}
}
