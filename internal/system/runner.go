// Package system wraps the host commands the installer shells out to
// (apt-get, systemctl, ssh-keyscan, git, LVM tools) behind an interface
// so provisioning steps can be unit-tested with a fake.
package system

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes host commands. Env entries are appended to the
// inherited environment in KEY=value form.
type Runner interface {
	// Run executes the command and returns its combined output. A
	// non-zero exit status is returned as an error wrapping the output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunEnv is Run with extra environment entries.
	RunEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner that executes commands on the host.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.RunEnv(ctx, nil, name, args...)
}

// RunEnv implements Runner.
func (r *ExecRunner) RunEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("running %s: %w: %s", name, err, out)
	}

	return out, nil
}
