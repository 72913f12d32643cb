package provision

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SecretFileStep generates the signing/encryption secret for the
// dashboard's credential store, created once and never regenerated.
type SecretFileStep struct{}

func (SecretFileStep) Name() string { return "credential-secret" }

func (SecretFileStep) Needed(_ context.Context, st *State) (bool, error) {
	if _, err := os.Stat(st.SecretPath()); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("checking %s: %w", st.SecretPath(), err)
	}

	return false, nil
}

func (SecretFileStep) Apply(_ context.Context, st *State) error {
	secret, err := GeneratePassword()
	if err != nil {
		return err
	}

	if err := os.WriteFile(st.SecretPath(), []byte(secret+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", st.SecretPath(), err)
	}

	return nil
}

// SettingsInjectStep injects the generated secret into the Node-RED
// settings file, replacing the commented credentialSecret placeholder.
// Injection happens on first run only: a settings file that already
// carries an uncommented credentialSecret is left untouched. Best-effort
// because Node-RED may not have written its settings file yet.
type SettingsInjectStep struct{}

func (SettingsInjectStep) Name() string { return "settings-inject" }

func (SettingsInjectStep) Needed(_ context.Context, st *State) (bool, error) {
	data, err := os.ReadFile(st.Cfg.NodeREDSettings)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", st.Cfg.NodeREDSettings, err)
	}

	return !hasCredentialSecret(string(data)), nil
}

func (SettingsInjectStep) Apply(_ context.Context, st *State) error {
	secret, err := os.ReadFile(st.SecretPath())
	if err != nil {
		return fmt.Errorf("reading %s: %w", st.SecretPath(), err)
	}

	data, err := os.ReadFile(st.Cfg.NodeREDSettings)
	if err != nil {
		return fmt.Errorf("reading %s: %w", st.Cfg.NodeREDSettings, err)
	}

	injected, ok := injectCredentialSecret(string(data), strings.TrimSpace(string(secret)))
	if !ok {
		return fmt.Errorf("no credentialSecret placeholder in %s", st.Cfg.NodeREDSettings)
	}

	if err := os.WriteFile(st.Cfg.NodeREDSettings, []byte(injected), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", st.Cfg.NodeREDSettings, err)
	}

	return nil
}

// hasCredentialSecret reports whether the settings content carries an
// active (uncommented) credentialSecret entry.
func hasCredentialSecret(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "credentialSecret:") {
			return true
		}
	}

	return false
}

// injectCredentialSecret replaces the first commented credentialSecret
// placeholder line with a real entry holding secret. It reports whether
// a placeholder was found.
func injectCredentialSecret(content, secret string) (string, bool) {
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//credentialSecret") {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		lines[i] = fmt.Sprintf("%scredentialSecret: %q,", indent, secret)

		return strings.Join(lines, "\n"), true
	}

	return content, false
}
