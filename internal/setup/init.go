// Package setup writes a starter repotools configuration.
package setup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ryantking/repotools/internal/config"
)

// Result describes what Install did with the config file.
type Result string

// Install outcomes.
const (
	Created     Result = "created"
	Overwritten Result = "overwritten"
	Skipped     Result = "skipped"
)

const header = `# repotools configuration.
# Environment variables (REPOTOOLS_*, LOG_LEVEL, LOG_FORMAT) override these values.
# The forge token is never read from this file: set GH_TOKEN or GITHUB_TOKEN,
# or log in with the gh CLI.
`

// Manager installs the starter config.
type Manager struct {
	path string
	out  io.Writer
}

// NewManager creates a manager writing the config to path and progress to out.
func NewManager(path string, out io.Writer) *Manager {
	return &Manager{path: path, out: out}
}

// Install writes cfg to the manager's path. An existing file is kept unless
// force is set.
func (m *Manager) Install(cfg *config.Config, force bool) (Result, error) {
	_, statErr := os.Stat(m.path)
	existed := statErr == nil
	if existed && !force {
		m.report(Skipped)
		return Skipped, nil
	}

	data, err := Render(cfg)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // config directory is user-owned
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	result := Created
	if existed {
		result = Overwritten
	}
	m.report(result)
	return result, nil
}

func (m *Manager) report(r Result) {
	fmt.Fprintf(m.out, "  • %s (%s)\n", m.path, r) //nolint:errcheck // progress output
}

// Render returns cfg as commented YAML.
func Render(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return buf.Bytes(), nil
}
