package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/config"
)

// fakeRunner records commands and serves canned outputs, keyed by the
// full command line.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
	envs    [][]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f.RunEnv(ctx, nil, name, args...)
}

func (f *fakeRunner) RunEnv(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	f.envs = append(f.envs, env)

	if err, ok := f.errs[key]; ok {
		return nil, err
	}

	return []byte(f.outputs[key]), nil
}

// testState builds a State rooted in a temp directory with a fake runner.
func testState(t *testing.T) (*State, *fakeRunner) {
	t.Helper()

	cfg := config.New()
	cfg.InstallRoot = t.TempDir()

	run := newFakeRunner()
	st := NewState(cfg, run, zerolog.Nop())
	st.SudoersDir = t.TempDir()
	st.SystemdDir = t.TempDir()

	return st, run
}

// recordingStep is a scriptable Step for runner tests.
type recordingStep struct {
	name      string
	needed    bool
	neededErr error
	applyErr  error
	probed    int
	applied   int
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Needed(_ context.Context, _ *State) (bool, error) {
	s.probed++
	return s.needed, s.neededErr
}

func (s *recordingStep) Apply(_ context.Context, _ *State) error {
	s.applied++
	return s.applyErr
}

var errBoom = errors.New("boom")
