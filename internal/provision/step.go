package provision

import (
	"context"
	"fmt"
)

// Step is one idempotent provisioning action: Needed probes the current
// system state, Apply brings it to the desired state. A step whose
// Needed returns false is skipped, which is what makes re-running the
// installer safe.
type Step interface {
	Name() string
	Needed(ctx context.Context, st *State) (bool, error)
	Apply(ctx context.Context, st *State) error
}

// Entry pairs a step with its failure policy. Best-effort steps log a
// warning and let the run continue; all others abort it.
type Entry struct {
	Step       Step
	BestEffort bool
}

// Runner executes a fixed sequence of steps in order.
type Runner struct {
	entries []Entry
}

// NewRunner creates a Runner over the given sequence.
func NewRunner(entries ...Entry) *Runner {
	return &Runner{entries: entries}
}

// Run executes the sequence. The first fatal step error aborts the run;
// already-completed steps are not rolled back and the operator recovers
// by re-invoking the installer.
func (r *Runner) Run(ctx context.Context, st *State) error {
	for _, e := range r.entries {
		if err := r.runOne(ctx, st, e); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) runOne(ctx context.Context, st *State, e Entry) error {
	log := st.Log.With().Str("step", e.Step.Name()).Logger()

	needed, err := e.Step.Needed(ctx, st)
	if err != nil {
		if e.BestEffort {
			log.Warn().Err(err).Msg("probe failed, skipping optional step")
			return nil
		}

		return fmt.Errorf("step %s: %w", e.Step.Name(), err)
	}

	if !needed {
		log.Info().Msg("already satisfied")
		return nil
	}

	log.Info().Msg("applying")

	if err := e.Step.Apply(ctx, st); err != nil {
		if e.BestEffort {
			log.Warn().Err(err).Msg("optional step failed, continuing")
			return nil
		}

		return fmt.Errorf("step %s: %w", e.Step.Name(), err)
	}

	log.Info().Msg("done")

	return nil
}
