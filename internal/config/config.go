package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a single emcee run.
type Config struct {
	// GameVersion is the pinned host version every lookup is resolved against.
	GameVersion string `yaml:"game_version"`
	// GameID identifies the host application in the catalog.
	GameID int `yaml:"game_id"`
	// CatalogURL is the base URL of the catalog API.
	CatalogURL string `yaml:"catalog_url"`
	// Directory holds the plugin archives to update.
	Directory string `yaml:"directory"`
	// Extension selects which files in Directory are archives.
	Extension string `yaml:"extension"`
	// MetadataFile is the path of the metadata document inside each archive.
	MetadataFile string `yaml:"metadata_file"`
	// Timeout bounds every catalog metadata call. Downloads are not bounded by it.
	Timeout time.Duration `yaml:"timeout"`
	// Progress enables the download progress bar.
	Progress *bool `yaml:"progress,omitempty"`
	// HostProcesses lists executable names that must not be running during an update.
	HostProcesses []string `yaml:"host_processes,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	// DefaultConfigFilename is looked up in the working directory when no path is given.
	DefaultConfigFilename = "emcee.yaml"

	// DefaultGameVersion is the host version emcee was written for.
	DefaultGameVersion = "1.12.2"

	// DefaultGameID is the catalog identifier of the host application.
	DefaultGameID = 432

	// DefaultCatalogURL is the public catalog API.
	DefaultCatalogURL = "https://addons-ecs.forgesvc.net/api/v2"

	// DefaultDirectory is the working directory.
	DefaultDirectory = "."

	// DefaultExtension is the archive extension of plugins.
	DefaultExtension = ".jar"

	// DefaultMetadataFile is the metadata document embedded in each archive.
	DefaultMetadataFile = "mcmod.info"

	// DefaultTimeout is the default duration for catalog calls.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the permission of written config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadExtension is returned for extensions without a leading dot.
	errBadExtension = errors.New("extension must start with a dot")
	// errBadGameID is returned for negative game identifiers.
	errBadGameID = errors.New("game id must not be negative")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOptional behaves like Load, except that a missing file at the default
// location yields Default. Missing files given explicitly are still errors.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg, err := Load(DefaultConfigFilename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills unset fields with defaults and rejects invalid values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	cfg.GameVersion = strings.TrimSpace(cfg.GameVersion)
	if cfg.GameVersion == "" {
		cfg.GameVersion = DefaultGameVersion
	}

	if cfg.GameID < 0 {
		return fmt.Errorf("%w: %d", errBadGameID, cfg.GameID)
	}

	if cfg.GameID == 0 {
		cfg.GameID = DefaultGameID
	}

	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
	}

	if _, err := url.ParseRequestURI(cfg.CatalogURL); err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}

	if cfg.Directory == "" {
		cfg.Directory = DefaultDirectory
	}

	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}

	if !strings.HasPrefix(cfg.Extension, ".") {
		return fmt.Errorf("%w: %q", errBadExtension, cfg.Extension)
	}

	if cfg.MetadataFile == "" {
		cfg.MetadataFile = DefaultMetadataFile
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Progress == nil {
		enabled := true
		cfg.Progress = &enabled
	}

	return nil
}

// ProgressEnabled reports whether downloads should render a progress bar.
func (c *Config) ProgressEnabled() bool {
	return c.Progress == nil || *c.Progress
}
