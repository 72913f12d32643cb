package provision

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DeployKeyStep generates the read-only SSH deploy key once. The
// private key is written in OpenSSH PEM form with owner-only
// permissions; the public half is logged so the operator can register
// it with the source-control host.
type DeployKeyStep struct{}

func (DeployKeyStep) Name() string { return "deploy-key" }

func (DeployKeyStep) Needed(_ context.Context, st *State) (bool, error) {
	if _, err := os.Stat(st.DeployKeyPath()); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("checking %s: %w", st.DeployKeyPath(), err)
	}

	return false, nil
}

func (DeployKeyStep) Apply(_ context.Context, st *State) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating deploy key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "ridestatus deploy key")
	if err != nil {
		return fmt.Errorf("marshalling deploy key: %w", err)
	}

	keyPath := st.DeployKeyPath()
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", keyPath, err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return fmt.Errorf("encoding public key: %w", err)
	}

	pubBytes := ssh.MarshalAuthorizedKey(sshPub)
	if err := os.WriteFile(keyPath+".pub", pubBytes, 0o644); err != nil {
		return fmt.Errorf("writing %s.pub: %w", keyPath, err)
	}

	st.Log.Info().
		Str("public_key", strings.TrimSpace(string(pubBytes))).
		Msg("register this deploy key with the source-control host")

	return nil
}

// KnownHostsStep pins the source-control host's SSH keys into a
// dedicated known_hosts file via ssh-keyscan, so repository
// synchronization never prompts for host trust.
type KnownHostsStep struct{}

func (KnownHostsStep) Name() string { return "known-hosts" }

func (KnownHostsStep) Needed(_ context.Context, st *State) (bool, error) {
	data, err := os.ReadFile(st.KnownHostsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, fmt.Errorf("checking %s: %w", st.KnownHostsPath(), err)
	}

	return !hasHostEntry(string(data), st.Cfg.GitHost), nil
}

func (KnownHostsStep) Apply(ctx context.Context, st *State) error {
	out, err := st.Run.Run(ctx, "ssh-keyscan", st.Cfg.GitHost)
	if err != nil {
		return fmt.Errorf("scanning host keys for %s: %w", st.Cfg.GitHost, err)
	}

	f, err := os.OpenFile(st.KnownHostsPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", st.KnownHostsPath(), err)
	}
	defer f.Close()

	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("appending to %s: %w", st.KnownHostsPath(), err)
	}

	return nil
}

// hasHostEntry reports whether any known_hosts line is for the given host.
func hasHostEntry(content, host string) bool {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		for _, h := range strings.Split(fields[0], ",") {
			if h == host {
				return true
			}
		}
	}

	return false
}
