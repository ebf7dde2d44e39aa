package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port           string   `json:"port"`
		StaticDir      string   `json:"static_dir"`
		Debug          bool     `json:"debug"`
		AllowedOrigins []string `json:"allowed_origins"` // empty allows any origin
	} `json:"server"`

	Database struct {
		Driver   string `json:"driver"` // "sqlite" or "postgres"
		Path     string `json:"path"`
		URL      string `json:"url"`
		SeedFile string `json:"seed_file"` // optional YAML list of NGOs
	} `json:"database"`

	ML struct {
		Type   string `json:"type"`   // "gateway", "google" or "local"
		Config string `json:"config"` // optional model-specific config file
	} `json:"ml"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is not set in config file")
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./static"
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	switch c.Database.Driver {
	case "":
		c.Database.Driver = "sqlite"
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "foodrescue.db"
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("database url is required for the postgres driver")
	}

	if c.ML.Type == "" {
		c.ML.Type = "gateway"
	}
	return nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	if path := os.Getenv("FOODRESCUE_CONFIG"); path != "" {
		return path
	}

	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	return "config.json"
}
