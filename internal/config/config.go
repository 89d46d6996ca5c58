package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
)

// DefaultPageSize is the number of entries shown per page when page_size is unset.
const DefaultPageSize = 20

// Config represents the main configuration for paiid.
type Config struct {
	ReposRoot   string           `toml:"repos_root"`
	DefaultRepo string           `toml:"default_repo"`
	LogDir      string           `toml:"log_dir"`
	LogLevel    string           `toml:"log_level"` // "debug", "info" (default), "warn" or "error"
	PageSize    int              `toml:"page_size"`
	Filesystem  FilesystemConfig `toml:"filesystem"`
	Journal     JournalConfig    `toml:"journal"`
	Archive     VaultConfig      `toml:"archive"`
	Encryption  EncryptionConfig `toml:"encryption"`
}

// EncryptionConfig holds paths to the age key pair used to encrypt archives.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// Ignore lists glob patterns of names hidden from every listing.
	// Unset means the default of ignoring dot-files.
	Ignore []string `toml:"ignore"`
}

// VaultConfig represents configuration for the archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", "filesystem" or "none"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// JournalConfig represents configuration for the activity journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with every path placed below baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ReposRoot: filepath.Join(baseDir, "repos"),
		LogDir:    filepath.Join(baseDir, "log"),
		LogLevel:  "info",
		PageSize:  DefaultPageSize,
		Journal: JournalConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Archive: VaultConfig{
			Type:        "filesystem",
			Name:        "local",
			FSVaultRoot: filepath.Join(baseDir, "archive"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "paiid.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "paiid.key"),
		},
	}
}

// Resolve expands a leading "~" in every configured path and fills
// defaults for unset scalar fields. It returns an error for values that
// can never work.
func (c *Config) Resolve() error {
	paths := []*string{
		&c.ReposRoot,
		&c.LogDir,
		&c.Journal.DataDir,
		&c.Archive.FSVaultRoot,
		&c.Encryption.PublicKeyPath,
		&c.Encryption.PrivateKeyPath,
	}
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}

	if c.ReposRoot == "" {
		return fmt.Errorf("repos_root is required")
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path. Paths are
// returned as written; call Resolve before using them.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Update reads the config at path, applies fn to it and writes it back.
// Unresolved paths are preserved as written.
func Update(path string, fn func(*Config)) error {
	cfg, err := ReadFromFile(path)
	if err != nil {
		return err
	}
	fn(cfg)
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("updating config: %w", err)
	}
	return nil
}
