package provision

import (
	"context"
	"fmt"
	"strings"
)

// PackagesStep installs the apt packages the appliance depends on.
// Present packages are detected with dpkg-query and only the missing
// ones are handed to a single apt-get invocation.
type PackagesStep struct {
	missing []string
}

func (*PackagesStep) Name() string { return "apt-packages" }

func (p *PackagesStep) Needed(ctx context.Context, st *State) (bool, error) {
	p.missing = p.missing[:0]

	for _, pkg := range st.Cfg.Packages {
		out, err := st.Run.Run(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
		if err != nil || !strings.Contains(string(out), "install ok installed") {
			p.missing = append(p.missing, pkg)
		}
	}

	return len(p.missing) > 0, nil
}

func (p *PackagesStep) Apply(ctx context.Context, st *State) error {
	args := append([]string{"install", "-y"}, p.missing...)

	_, err := st.Run.RunEnv(ctx,
		[]string{"DEBIAN_FRONTEND=noninteractive"},
		"apt-get", args...,
	)
	if err != nil {
		return fmt.Errorf("installing packages %s: %w", strings.Join(p.missing, " "), err)
	}

	return nil
}

// NodeREDStep installs Node-RED globally via npm; it ships outside the
// Ubuntu archive.
type NodeREDStep struct{}

func (NodeREDStep) Name() string { return "node-red" }

func (NodeREDStep) Needed(ctx context.Context, st *State) (bool, error) {
	if _, err := st.Run.Run(ctx, "npm", "ls", "-g", "node-red"); err != nil {
		return true, nil
	}

	return false, nil
}

func (NodeREDStep) Apply(ctx context.Context, st *State) error {
	if _, err := st.Run.Run(ctx, "npm", "install", "-g", "--unsafe-perm", "node-red"); err != nil {
		return fmt.Errorf("installing node-red: %w", err)
	}

	return nil
}
