package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultInstallRoot     = "/opt/ridestatus"
	DefaultServiceUser     = "ridestatus"
	DefaultGitHost         = "github.com"
	DefaultDatabaseHost    = "127.0.0.1"
	DefaultDatabasePort    = 3306
	DefaultDatabaseName    = "ridestatus"
	DefaultDatabaseUser    = "ridestatus"
	DefaultMariaDBSocket   = "/run/mysqld/mysqld.sock"
	DefaultMigrationsDir   = "/opt/ridestatus/migrations"
	DefaultNodeREDSettings = "/home/ridestatus/.node-red/settings.js"
	DefaultConnectTimeout  = 10 * time.Second
)

// DefaultPackages is the apt package set the appliance depends on.
// Node-RED itself ships via npm and is not in this list.
var DefaultPackages = []string{ //nolint:gochecknoglobals // immutable default set
	"mosquitto",
	"mosquitto-clients",
	"mariadb-server",
	"mariadb-client",
	"ansible",
	"git",
	"npm",
}

// Repo names a private repository synchronized into <root>/src/<name>.
type Repo struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds the installer configuration loaded from file, environment,
// and flags.
type Config struct {
	InstallRoot     string
	ServiceUser     string
	GitHost         string
	Repos           []Repo
	Packages        []string
	DatabaseDSN     string // overrides the credentials file when set
	DatabaseHost    string
	DatabasePort    int
	DatabaseName    string
	DatabaseUser    string
	MariaDBSocket   string
	MigrationsDir   string
	NodeREDSettings string
	ConnectTimeout  time.Duration
	Verbose         bool
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	InstallRoot     string   `yaml:"install_root"`
	ServiceUser     string   `yaml:"service_user"`
	GitHost         string   `yaml:"git_host"`
	Repos           []Repo   `yaml:"repos"`
	Packages        []string `yaml:"packages"`
	DatabaseDSN     string   `yaml:"database_dsn"`
	DatabaseHost    string   `yaml:"database_host"`
	DatabasePort    int      `yaml:"database_port"`
	DatabaseName    string   `yaml:"database_name"`
	DatabaseUser    string   `yaml:"database_user"`
	MariaDBSocket   string   `yaml:"mariadb_socket"`
	MigrationsDir   string   `yaml:"migrations_dir"`
	NodeREDSettings string   `yaml:"nodered_settings"`
	ConnectTimeout  string   `yaml:"connect_timeout"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		InstallRoot:     DefaultInstallRoot,
		ServiceUser:     DefaultServiceUser,
		GitHost:         DefaultGitHost,
		Packages:        DefaultPackages,
		DatabaseHost:    DefaultDatabaseHost,
		DatabasePort:    DefaultDatabasePort,
		DatabaseName:    DefaultDatabaseName,
		DatabaseUser:    DefaultDatabaseUser,
		MariaDBSocket:   DefaultMariaDBSocket,
		MigrationsDir:   DefaultMigrationsDir,
		NodeREDSettings: DefaultNodeREDSettings,
		ConnectTimeout:  DefaultConnectTimeout,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.InstallRoot != "" {
		cfg.InstallRoot = raw.InstallRoot
	}

	if raw.ServiceUser != "" {
		cfg.ServiceUser = raw.ServiceUser
	}

	if raw.GitHost != "" {
		cfg.GitHost = raw.GitHost
	}

	if len(raw.Repos) > 0 {
		cfg.Repos = raw.Repos
	}

	if len(raw.Packages) > 0 {
		cfg.Packages = raw.Packages
	}

	if raw.DatabaseDSN != "" {
		cfg.DatabaseDSN = raw.DatabaseDSN
	}

	if raw.DatabaseHost != "" {
		cfg.DatabaseHost = raw.DatabaseHost
	}

	if raw.DatabasePort != 0 {
		cfg.DatabasePort = raw.DatabasePort
	}

	if raw.DatabaseName != "" {
		cfg.DatabaseName = raw.DatabaseName
	}

	if raw.DatabaseUser != "" {
		cfg.DatabaseUser = raw.DatabaseUser
	}

	if raw.MariaDBSocket != "" {
		cfg.MariaDBSocket = raw.MariaDBSocket
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.NodeREDSettings != "" {
		cfg.NodeREDSettings = raw.NodeREDSettings
	}

	if raw.ConnectTimeout != "" {
		d, err := time.ParseDuration(raw.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing connect_timeout %q: %w", raw.ConnectTimeout, err)
		}

		cfg.ConnectTimeout = d
	}

	return cfg, nil
}

// MergeEnv overrides config fields from RIDESTATUS_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("RIDESTATUS_INSTALL_ROOT"); v != "" {
		cfg.InstallRoot = v
	}

	if v := os.Getenv("RIDESTATUS_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}

	if v := os.Getenv("RIDESTATUS_DATABASE_HOST"); v != "" {
		cfg.DatabaseHost = v
	}

	if v := os.Getenv("RIDESTATUS_DATABASE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.DatabasePort = p
		}
	}

	if v := os.Getenv("RIDESTATUS_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("RIDESTATUS_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = d
		}
	}
}
