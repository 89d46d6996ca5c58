package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PAIID_CONFIG_PATH: config file location (default: ~/.config/paiid.toml)
//   - PAIID_HOME: base directory for paiid data (default: ~/.local/share/paiid)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"repos_root":  filepath.Join(baseDir, "repos"),
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking PAIID_CONFIG_PATH env var first,
// then falling back to the default ~/.config/paiid.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("PAIID_CONFIG_PATH"); path != "" {
		return homedir.Expand(path)
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "paiid.toml"), nil
}

// getBaseDir returns the base directory for paiid data, checking PAIID_HOME env var first,
// then falling back to the XDG default ~/.local/share/paiid.
func getBaseDir() (string, error) {
	if path := os.Getenv("PAIID_HOME"); path != "" {
		return homedir.Expand(path)
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "paiid"), nil
}
