package provision

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/SFTP-RideStatus/ridestatus-installer/internal/database"
)

const passwordBytes = 24

// Credentials are the generated database connection parameters,
// persisted once in a key=value file with owner-only permissions and
// reused verbatim on every later run.
type Credentials struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN returns the go-sql-driver connection string for these credentials.
func (c *Credentials) DSN() string {
	return database.TCPDSN(c.User, c.Password, c.Host, c.Port, c.Name)
}

// WriteFile persists the credentials in key=value form, mode 0600.
func (c *Credentials) WriteFile(path string) error {
	pairs := map[string]string{
		"DB_HOST":     c.Host,
		"DB_PORT":     strconv.Itoa(c.Port),
		"DB_NAME":     c.Name,
		"DB_USER":     c.User,
		"DB_PASSWORD": c.Password,
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, pairs[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing credentials file %s: %w", path, err)
	}

	return nil
}

// LoadCredentials parses a key=value credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	c := &Credentials{}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("credentials file %s: malformed line %q", path, line)
		}

		switch key {
		case "DB_HOST":
			c.Host = value
		case "DB_PORT":
			p, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("credentials file %s: bad port %q: %w", path, value, err)
			}

			c.Port = p
		case "DB_NAME":
			c.Name = value
		case "DB_USER":
			c.User = value
		case "DB_PASSWORD":
			c.Password = value
		}
	}

	return c, nil
}

// GeneratePassword returns a random hex password from crypto/rand.
func GeneratePassword() (string, error) {
	buf := make([]byte, passwordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// CredentialsStep generates the database credentials file once. On later
// runs Needed loads the existing file into the state so downstream steps
// (bootstrap, migrations) see the same parameters.
type CredentialsStep struct{}

func (CredentialsStep) Name() string { return "database-credentials" }

func (CredentialsStep) Needed(_ context.Context, st *State) (bool, error) {
	path := st.CredentialsPath()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		return false, err
	}

	st.Creds = creds

	return false, nil
}

func (CredentialsStep) Apply(_ context.Context, st *State) error {
	password, err := GeneratePassword()
	if err != nil {
		return err
	}

	creds := &Credentials{
		Host:     st.Cfg.DatabaseHost,
		Port:     st.Cfg.DatabasePort,
		Name:     st.Cfg.DatabaseName,
		User:     st.Cfg.DatabaseUser,
		Password: password,
	}

	if err := creds.WriteFile(st.CredentialsPath()); err != nil {
		return err
	}

	st.Creds = creds

	return nil
}
