package provision

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/config"
	"github.com/SFTP-RideStatus/ridestatus-installer/internal/system"
)

// State is the explicit state descriptor threaded through every
// provisioning step: configuration, generated credentials once loaded,
// the host command runner, and the logger. Steps read and extend it;
// there is no global mutable state.
type State struct {
	Cfg   *config.Config
	Creds *Credentials
	Run   system.Runner
	Log   zerolog.Logger

	// ExpandDisk enables the best-effort LVM expansion step.
	ExpandDisk bool

	// SudoersDir and SystemdDir default to the real locations and are
	// overridable in tests.
	SudoersDir string
	SystemdDir string
}

// NewState builds a State with production defaults.
func NewState(cfg *config.Config, run system.Runner, log zerolog.Logger) *State {
	return &State{
		Cfg:        cfg,
		Run:        run,
		Log:        log,
		SudoersDir: "/etc/sudoers.d",
		SystemdDir: "/etc/systemd/system",
	}
}

// Fixed subdirectories of the install root.

func (s *State) ConfigDir() string  { return filepath.Join(s.Cfg.InstallRoot, "config") }
func (s *State) BackupsDir() string { return filepath.Join(s.Cfg.InstallRoot, "backups") }
func (s *State) LogsDir() string    { return filepath.Join(s.Cfg.InstallRoot, "logs") }
func (s *State) BinDir() string     { return filepath.Join(s.Cfg.InstallRoot, "bin") }
func (s *State) SrcDir() string     { return filepath.Join(s.Cfg.InstallRoot, "src") }

// Well-known files under the config directory.

func (s *State) CredentialsPath() string { return filepath.Join(s.ConfigDir(), "database.env") }
func (s *State) SecretPath() string      { return filepath.Join(s.ConfigDir(), "credential-secret") }
func (s *State) DeployKeyPath() string   { return filepath.Join(s.ConfigDir(), "deploy_key") }
func (s *State) KnownHostsPath() string  { return filepath.Join(s.ConfigDir(), "known_hosts") }
