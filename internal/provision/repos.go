package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ReposStep synchronizes the configured private repositories into
// <root>/src/<name>: a clone when absent, otherwise a fast-forward-only
// pull — history is never rewritten. Authentication uses the deploy key
// and the pinned known_hosts file. Best-effort: a host that is offline
// or a key not yet registered must not abort provisioning.
type ReposStep struct{}

func (ReposStep) Name() string { return "repositories" }

func (ReposStep) Needed(_ context.Context, st *State) (bool, error) {
	// Synchronization itself is the idempotent act; run whenever any
	// repositories are configured.
	return len(st.Cfg.Repos) > 0, nil
}

func (ReposStep) Apply(ctx context.Context, st *State) error {
	env := []string{gitSSHCommand(st)}

	for _, repo := range st.Cfg.Repos {
		dir := filepath.Join(st.SrcDir(), repo.Name)

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			if _, err := st.Run.RunEnv(ctx, env, "git", "-C", dir, "pull", "--ff-only"); err != nil {
				return fmt.Errorf("updating %s: %w", repo.Name, err)
			}

			continue
		}

		if _, err := st.Run.RunEnv(ctx, env, "git", "clone", repo.URL, dir); err != nil {
			return fmt.Errorf("cloning %s: %w", repo.Name, err)
		}
	}

	return nil
}

func gitSSHCommand(st *State) string {
	return fmt.Sprintf(
		"GIT_SSH_COMMAND=ssh -i %s -o UserKnownHostsFile=%s -o IdentitiesOnly=yes",
		st.DeployKeyPath(), st.KnownHostsPath(),
	)
}
