package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".juniorbot"

// Paths holds resolved filesystem paths for juniorbot data.
type Paths struct {
	Base        string // ~/.juniorbot
	Config      string // ~/.juniorbot/config.yaml
	Credentials string // ~/.juniorbot/credentials
	Data        string // ~/.juniorbot/data
	Logs        string // ~/.juniorbot/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If JUNIORBOT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("JUNIORBOT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:        base,
		Config:      filepath.Join(base, "config.yaml"),
		Credentials: filepath.Join(base, "credentials"),
		Data:        filepath.Join(base, "data"),
		Logs:        filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Credentials, p.Data, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// SessionFile is the canonical location of the persisted WhatsApp
// credential blob.
func (p Paths) SessionFile() string {
	return filepath.Join(p.Credentials, "session.json")
}

// DatabaseFile resolves the sqlite path, preferring an explicit config value.
func (p Paths) DatabaseFile(cfg StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return filepath.Join(p.Data, "juniorbot.db")
}
