package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config описывает параметры оболочки.
type Config struct {
	Agent struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"agent"`
	Shell struct {
		HistoryFile string `yaml:"history_file"`
		PromptName  string `yaml:"prompt_name"`
		Banner      bool   `yaml:"banner"`
	} `yaml:"shell"`
	Security struct {
		ModuleDirs []string `yaml:"module_dirs"`
	} `yaml:"security"`
	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Agent.LogLevel = "warn"
	cfg.Shell.HistoryFile = "~/.aqsa_history"
	cfg.Shell.PromptName = "Al-Aqsa"
	cfg.Shell.Banner = true
	cfg.Audit.Enabled = true
	cfg.Audit.Path = "~/.aqsa/audit.db"
	return cfg
}

// Load читает конфиг из файла YAML, поверх значений по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- путь к конфигу задает оператор.
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("config file is empty")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Expand раскрывает пути конфига относительно домашнего каталога.
func (c Config) Expand(env Env) Config {
	c.Shell.HistoryFile = env.ExpandPath(c.Shell.HistoryFile)
	c.Audit.Path = env.ExpandPath(c.Audit.Path)
	dirs := make([]string, 0, len(c.Security.ModuleDirs))
	for _, d := range c.Security.ModuleDirs {
		dirs = append(dirs, env.ExpandPath(d))
	}
	c.Security.ModuleDirs = dirs
	return c
}
