package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"diskmap/internal/domain"
)

const (
	configDirName  = "diskmap"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		Path:     ".",
		Mode:     domain.ModeQuick,
		MaxDepth: 4,
		Theme:    "dark",
	}
}

func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

func LoadConfig() (Config, error) {
	config := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return config, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, err
	}
	return mergeConfig(config, stored), nil
}

func SaveConfig(config Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Path != nil {
		merged.Path = *stored.Path
	}
	if stored.Mode != nil {
		merged.Mode = scanMode(*stored.Mode, base.Mode)
	}
	if stored.MaxDepth != nil && *stored.MaxDepth > 0 {
		merged.MaxDepth = *stored.MaxDepth
	}
	if stored.ExtraExclude != nil {
		merged.ExtraExclude = stored.ExtraExclude
	}
	if stored.Theme != nil {
		merged.Theme = *stored.Theme
	}
	return merged
}

func scanMode(value string, fallback domain.ScanMode) domain.ScanMode {
	switch domain.ScanMode(value) {
	case domain.ModeQuick, domain.ModeFull:
		return domain.ScanMode(value)
	default:
		return fallback
	}
}
