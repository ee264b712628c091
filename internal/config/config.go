package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPrefix starts every option key: `exflow_enable_empty_catch`.
const DefaultPrefix = "exflow"

// envPrefix marks environment variables that override options.
const envPrefix = "EXFLOW_"

type Config struct {
	Prefix  string `yaml:"prefix" toml:"prefix"`
	Project struct {
		Root    string   `yaml:"root" toml:"root"`
		Exclude []string `yaml:"exclude" toml:"exclude"`
	} `yaml:"project" toml:"project"`
	Analysis struct {
		Workers int `yaml:"workers" toml:"workers"`
		// BroadTypes are the catch types reported as overly broad.
		BroadTypes []string `yaml:"broad_types" toml:"broad_types"`
	} `yaml:"analysis" toml:"analysis"`
	Output struct {
		Format      string `yaml:"format" toml:"format"`
		MinSeverity string `yaml:"min_severity" toml:"min_severity"`
	} `yaml:"output" toml:"output"`
	Store struct {
		Path string `yaml:"path" toml:"path"`
	} `yaml:"store" toml:"store"`
	// Options holds raw `<prefix>_enable_<rule>` / `<prefix>_analyze_<kind>`
	// entries.
	Options map[string]string `yaml:"options" toml:"options"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Prefix: DefaultPrefix}
	cfg.Project.Root = "."
	cfg.Analysis.BroadTypes = []string{"System.Exception", "System.SystemException"}
	cfg.Output.Format = "text"
	cfg.Output.MinSeverity = "suggestion"
	cfg.Options = make(map[string]string)
	return cfg
}

// LoadConfig reads path (YAML, or TOML for a .toml extension) over the
// defaults, then applies EXFLOW_* environment overrides. A .env file in the
// working directory is loaded first. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load config file
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.Decode(string(file), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Options == nil {
		cfg.Options = make(map[string]string)
	}

	// 3. Override with Environment Variables if present
	cfg.applyEnv(os.Environ())
	return cfg, nil
}

func (c *Config) applyEnv(environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		switch name {
		case "root":
			c.Project.Root = value
		case "workers":
			if n, err := strconv.Atoi(value); err == nil {
				c.Analysis.Workers = n
			}
		case "format":
			c.Output.Format = value
		case "min_severity":
			c.Output.MinSeverity = value
		case "store":
			c.Store.Path = value
		case "broad_types":
			c.Analysis.BroadTypes = splitList(value)
		default:
			if strings.HasPrefix(name, "enable_") || strings.HasPrefix(name, "analyze_") {
				c.Options[c.Prefix+"_"+name] = value
			}
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Source returns the options as a key lookup.
func (c *Config) Source() Source {
	return MapSource(c.Options)
}
