package provision

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"text/template"
)

// nodeREDUnit is the systemd unit for the Node-RED dashboard. Rendered
// byte-exact and compared against the installed unit before any write,
// so unchanged templates never touch systemd.
const nodeREDUnit = `[Unit]
Description=Node-RED dashboard
After=network.target mariadb.service

[Service]
Type=simple
User={{.User}}
EnvironmentFile={{.CredentialsFile}}
ExecStart=/usr/bin/env node-red --userDir /home/{{.User}}/.node-red
WorkingDirectory=/home/{{.User}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

var nodeREDTemplate = template.Must( //nolint:gochecknoglobals // parsed once
	template.New("node-red.service").Parse(nodeREDUnit),
)

// ServiceUnitsStep installs the appliance's systemd units and enables
// them. daemon-reload and enable only run when a rendered unit actually
// changed on disk.
type ServiceUnitsStep struct{}

func (ServiceUnitsStep) Name() string { return "service-units" }

func (ServiceUnitsStep) Needed(_ context.Context, st *State) (bool, error) {
	content, err := renderNodeREDUnit(st)
	if err != nil {
		return false, err
	}

	return NeedsWrite(nodeREDUnitPath(st), content)
}

func (ServiceUnitsStep) Apply(ctx context.Context, st *State) error {
	content, err := renderNodeREDUnit(st)
	if err != nil {
		return err
	}

	changed, err := WriteFileIfChanged(nodeREDUnitPath(st), content, 0o644)
	if err != nil {
		return fmt.Errorf("installing node-red unit: %w", err)
	}

	if !changed {
		return nil
	}

	if _, err := st.Run.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("reloading systemd: %w", err)
	}

	if _, err := st.Run.Run(ctx, "systemctl", "enable", "--now", "node-red"); err != nil {
		return fmt.Errorf("enabling node-red: %w", err)
	}

	return nil
}

func nodeREDUnitPath(st *State) string {
	return filepath.Join(st.SystemdDir, "node-red.service")
}

func renderNodeREDUnit(st *State) ([]byte, error) {
	var buf bytes.Buffer

	err := nodeREDTemplate.Execute(&buf, struct {
		User            string
		CredentialsFile string
	}{
		User:            st.Cfg.ServiceUser,
		CredentialsFile: st.CredentialsPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering node-red unit: %w", err)
	}

	return buf.Bytes(), nil
}
