package provision

import (
	"context"
	"fmt"
	"path/filepath"
)

// SudoersStep grants the service user passwordless sudo via a drop-in
// under sudoers.d, written byte-exact and only when divergent.
type SudoersStep struct{}

func (SudoersStep) Name() string { return "passwordless-sudo" }

func (SudoersStep) Needed(_ context.Context, st *State) (bool, error) {
	return NeedsWrite(sudoersPath(st), sudoersContent(st))
}

func (SudoersStep) Apply(_ context.Context, st *State) error {
	if _, err := WriteFileIfChanged(sudoersPath(st), sudoersContent(st), 0o440); err != nil {
		return fmt.Errorf("writing sudoers drop-in: %w", err)
	}

	return nil
}

func sudoersPath(st *State) string {
	return filepath.Join(st.SudoersDir, st.Cfg.ServiceUser)
}

func sudoersContent(st *State) []byte {
	return []byte(fmt.Sprintf("%s ALL=(ALL) NOPASSWD:ALL\n", st.Cfg.ServiceUser))
}
