package provision

import (
	"context"
	"fmt"
)

// ServiceUserStep ensures the appliance service user exists. Node-RED
// and the synchronized repositories run under this account rather than
// root.
type ServiceUserStep struct{}

func (ServiceUserStep) Name() string { return "service-user" }

func (ServiceUserStep) Needed(ctx context.Context, st *State) (bool, error) {
	if _, err := st.Run.Run(ctx, "id", "-u", st.Cfg.ServiceUser); err != nil {
		// id exits non-zero for unknown users.
		return true, nil
	}

	return false, nil
}

func (ServiceUserStep) Apply(ctx context.Context, st *State) error {
	if _, err := st.Run.Run(ctx, "useradd",
		"--create-home", "--shell", "/bin/bash", st.Cfg.ServiceUser,
	); err != nil {
		return fmt.Errorf("creating user %s: %w", st.Cfg.ServiceUser, err)
	}

	return nil
}
