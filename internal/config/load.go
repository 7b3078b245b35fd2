package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.baseDir = filepath.Dir(absPath)

	return &cfg, nil
}

// LoadCredentials fills Credentials from the environment. A non-empty envFile
// is loaded first and must exist; otherwise a .env next to the config is used
// when present. Variables already set in the environment win.
func (c *Config) LoadCredentials(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if c.baseDir != "" {
		err := godotenv.Load(filepath.Join(c.baseDir, ".env"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	c.Credentials = Credentials{
		WikiUsername: os.Getenv(EnvWikiUsername),
		WikiPassword: os.Getenv(EnvWikiPassword),
		DBUser:       os.Getenv(EnvDBUser),
		DBPassword:   os.Getenv(EnvDBPassword),
	}
	return nil
}

func (c *Config) resolvePath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	base := c.baseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}
