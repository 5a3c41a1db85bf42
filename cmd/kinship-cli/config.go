package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/persistorai/kinship/client"
)

// Environment variables read by the CLI.
const (
	envURL    = "KINSHIP_URL"
	envAPIKey = "KINSHIP_API_KEY"
)

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// configFile is ~/.kinship/config.yaml. The flat url/api_key keys are read
// when no profile matches.
type configFile struct {
	URL           string                   `yaml:"url,omitempty"`
	APIKey        string                   `yaml:"api_key,omitempty"`
	Profiles      map[string]profileConfig `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

// active returns the settings of the active profile, falling back to the
// flat keys.
func (c *configFile) active() profileConfig {
	p := profileConfig{URL: c.URL, APIKey: c.APIKey}

	name := c.ActiveProfile
	if name == "" {
		name = "default"
	}

	if prof, ok := c.Profiles[name]; ok {
		if prof.URL != "" {
			p.URL = prof.URL
		}
		if prof.APIKey != "" {
			p.APIKey = prof.APIKey
		}
	}

	return p
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kinship", "config.yaml"), nil
}

func loadConfigFile() (string, *configFile, error) {
	path, err := configPath()
	if err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return path, nil, err
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return path, nil, err
	}

	return path, &cfg, nil
}

// resolveSettings applies flag > env > config file precedence. A URL equal
// to the default counts as unset.
func resolveSettings(url, apiKey string, cfg *configFile) (string, string) {
	if url == client.DefaultURL {
		if v := os.Getenv(envURL); v != "" {
			url = v
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}

	if cfg != nil {
		p := cfg.active()
		if url == client.DefaultURL && p.URL != "" {
			url = p.URL
		}
		if apiKey == "" && p.APIKey != "" {
			apiKey = p.APIKey
		}
	}

	return url, apiKey
}

func resolveConfig() {
	_, cfg, _ := loadConfigFile()
	flagURL, flagKey = resolveSettings(flagURL, flagKey, cfg)
}

// writeConfig stores url and apiKey as the default profile, keeping any
// other profiles already in the file.
func writeConfig(url, apiKey string) (string, error) {
	path, cfg, err := loadConfigFile()
	if path == "" {
		return "", err
	}
	if cfg == nil {
		cfg = &configFile{}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]profileConfig{}
	}

	cfg.Profiles["default"] = profileConfig{URL: url, APIKey: apiKey}
	cfg.ActiveProfile = "default"
	cfg.URL, cfg.APIKey = "", ""

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}
