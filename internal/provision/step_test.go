package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_skipsSatisfiedSteps(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	satisfied := &recordingStep{name: "satisfied", needed: false}
	needed := &recordingStep{name: "needed", needed: true}

	r := NewRunner(Entry{Step: satisfied}, Entry{Step: needed})

	require.NoError(t, r.Run(context.Background(), st))

	assert.Equal(t, 1, satisfied.probed)
	assert.Equal(t, 0, satisfied.applied)
	assert.Equal(t, 1, needed.applied)
}

func TestRunner_fatalStepAbortsSequence(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	failing := &recordingStep{name: "failing", needed: true, applyErr: errBoom}
	after := &recordingStep{name: "after", needed: true}

	r := NewRunner(Entry{Step: failing}, Entry{Step: after})

	err := r.Run(context.Background(), st)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "step failing")
	assert.Equal(t, 0, after.probed, "steps after a fatal failure must not run")
}

func TestRunner_bestEffortFailureContinues(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	optional := &recordingStep{name: "optional", needed: true, applyErr: errBoom}
	after := &recordingStep{name: "after", needed: true}

	r := NewRunner(Entry{Step: optional, BestEffort: true}, Entry{Step: after})

	require.NoError(t, r.Run(context.Background(), st))

	assert.Equal(t, 1, optional.applied)
	assert.Equal(t, 1, after.applied)
}

func TestRunner_bestEffortProbeFailureContinues(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	optional := &recordingStep{name: "optional", neededErr: errBoom}
	after := &recordingStep{name: "after", needed: true}

	r := NewRunner(Entry{Step: optional, BestEffort: true}, Entry{Step: after})

	require.NoError(t, r.Run(context.Background(), st))

	assert.Equal(t, 0, optional.applied)
	assert.Equal(t, 1, after.applied)
}

func TestRunner_fatalProbeFailureAborts(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	failing := &recordingStep{name: "failing", neededErr: errBoom}

	r := NewRunner(Entry{Step: failing})

	err := r.Run(context.Background(), st)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestInstallSequence_orderAndPolicies(t *testing.T) {
	t.Parallel()

	entries := InstallSequence()

	var names []string
	bestEffort := map[string]bool{}

	for _, e := range entries {
		names = append(names, e.Step.Name())
		bestEffort[e.Step.Name()] = e.BestEffort
	}

	assert.Equal(t, []string{
		"filesystem-layout",
		"service-user",
		"apt-packages",
		"node-red",
		"deploy-key",
		"known-hosts",
		"passwordless-sudo",
		"disk-expand",
		"mariadb-service",
		"database-credentials",
		"database-bootstrap",
		"credential-secret",
		"settings-inject",
		"repositories",
		"service-units",
	}, names)

	// Optional enhancements never abort the run.
	assert.True(t, bestEffort["disk-expand"])
	assert.True(t, bestEffort["repositories"])
	assert.True(t, bestEffort["known-hosts"])
	assert.True(t, bestEffort["settings-inject"])

	assert.False(t, bestEffort["apt-packages"])
	assert.False(t, bestEffort["database-bootstrap"])
	assert.False(t, bestEffort["service-units"])
}
