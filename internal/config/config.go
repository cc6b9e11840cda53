// Package config resolves aim configuration from layered providers:
// the project file (.aim/config.json), the environment, and stored config
// rows, merged in ascending precedence by a single Resolve function.
// Downstream components consume only the merged DatabaseConfig and
// GitHubConfig values, never the providers themselves.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissingConfig marks a required setting that no provider supplied.
// Callers wrap it with the setting name.
var ErrMissingConfig = errors.New("missing required configuration")

// DatabaseConfig is the resolved database configuration.
type DatabaseConfig struct {
	Path string `json:"path"`
	Type string `json:"type"` // only "sqlite" is supported
}

// GitHubConfig is the resolved tracker configuration.
type GitHubConfig struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Token string `json:"token,omitempty"`
}

// Config is the merged view handed to the rest of the application.
type Config struct {
	Database DatabaseConfig `json:"database"`
	GitHub   GitHubConfig   `json:"github"`
}

// projectFile is the shape of .aim/config.json.
type projectFile struct {
	Database DatabaseConfig `json:"database"`
	GitHub   GitHubConfig   `json:"github"`
}

// Provider supplies a partial configuration layer. Later providers in the
// Resolve list override earlier ones field by field.
type Provider struct {
	Name string
	Load func() (Config, error)
}

// ProjectProvider reads .aim/config.json from dir. A missing file yields an
// empty layer, not an error.
func ProjectProvider(dir string) Provider {
	return Provider{
		Name: "project",
		Load: func() (Config, error) {
			path := filepath.Join(dir, ".aim", "config.json")
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				return Config{}, nil
			}
			if err != nil {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
			var pf projectFile
			if err := json.Unmarshal(data, &pf); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
			return Config{Database: pf.Database, GitHub: pf.GitHub}, nil
		},
	}
}

// EnvProvider reads configuration from the process environment.
func EnvProvider() Provider {
	return Provider{
		Name: "env",
		Load: func() (Config, error) {
			return Config{
				Database: DatabaseConfig{Path: os.Getenv("AIM_DB_PATH")},
				GitHub: GitHubConfig{
					Owner: os.Getenv("GITHUB_OWNER"),
					Repo:  os.Getenv("GITHUB_REPO"),
					Token: os.Getenv("GITHUB_TOKEN"),
				},
			}, nil
		},
	}
}

// StoredProvider reads configuration from key/value rows already loaded from
// the config table. Keys: database.path, github.owner, github.repo,
// github.token.
func StoredProvider(values map[string]string) Provider {
	return Provider{
		Name: "stored",
		Load: func() (Config, error) {
			return Config{
				Database: DatabaseConfig{Path: values["database.path"]},
				GitHub: GitHubConfig{
					Owner: values["github.owner"],
					Repo:  values["github.repo"],
					Token: values["github.token"],
				},
			}, nil
		},
	}
}

// Resolve merges the providers in order, each layer overriding non-empty
// fields of the previous ones.
func Resolve(providers ...Provider) (Config, error) {
	merged := Config{Database: DatabaseConfig{Type: "sqlite"}}

	for _, p := range providers {
		layer, err := p.Load()
		if err != nil {
			return Config{}, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		if layer.Database.Path != "" {
			merged.Database.Path = layer.Database.Path
		}
		if layer.Database.Type != "" {
			merged.Database.Type = layer.Database.Type
		}
		if layer.GitHub.Owner != "" {
			merged.GitHub.Owner = layer.GitHub.Owner
		}
		if layer.GitHub.Repo != "" {
			merged.GitHub.Repo = layer.GitHub.Repo
		}
		if layer.GitHub.Token != "" {
			merged.GitHub.Token = layer.GitHub.Token
		}
	}

	return merged, nil
}

// RequireGitHub validates that the merged config can drive the tracker.
func (c Config) RequireGitHub() error {
	if c.GitHub.Owner == "" {
		return fmt.Errorf("%w: github.owner", ErrMissingConfig)
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("%w: github.repo", ErrMissingConfig)
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("%w: github.token", ErrMissingConfig)
	}
	return nil
}

// Save writes the project layer of the config to dir/.aim/config.json.
// The token is never written to disk.
func Save(dir string, cfg Config) error {
	aimDir := filepath.Join(dir, ".aim")
	if err := os.MkdirAll(aimDir, 0755); err != nil {
		return fmt.Errorf("failed to create .aim dir: %w", err)
	}

	pf := projectFile{Database: cfg.Database, GitHub: cfg.GitHub}
	pf.GitHub.Token = ""

	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(aimDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
