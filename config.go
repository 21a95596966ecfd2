package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ExclusivePair names a source/target slot pair whose edge evicts every other
// edge on both endpoints.
type ExclusivePair struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

type Config struct {
	SaveDirectory        string          `toml:"save_directory"`
	Confirmations        bool            `toml:"confirmations"`
	MultipleInputAllowed bool            `toml:"multiple_input_allowed"`
	TranslateNames       bool            `toml:"translate_names"`
	CellWidth            float64         `toml:"cell_width"`
	CellHeight           float64         `toml:"cell_height"`
	LogFile              string          `toml:"log_file"`
	LogLevel             string          `toml:"log_level"`
	Exclusive            []ExclusivePair `toml:"exclusive"`
}

func defaultConfig() *Config {
	return &Config{
		Confirmations: true,
		CellWidth:     defaultCellWidth,
		CellHeight:    defaultCellHeight,
		LogLevel:      "info",
	}
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "nodegraph")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// loadConfig reads path, or the default location when path is empty. A
// missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.SaveDirectory = expandHome(cfg.SaveDirectory)
	cfg.LogFile = expandHome(cfg.LogFile)
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = defaultCellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = defaultCellHeight
	}
	return cfg, nil
}

func saveConfig(cfg *Config, path string) error {
	if path == "" {
		path = defaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
