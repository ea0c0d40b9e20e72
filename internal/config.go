package internal

import (
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Paths  PathsConfig       `yaml:"paths"`
	Log    LogConfig         `yaml:"log"`
	Fetch  FetchConfig       `yaml:"fetch"`
	Notify NotifyConfig      `yaml:"notify"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Paths.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Fetch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// PathsConfig holds the directory layout. Defaults follow the XDG
// convention and can be overridden per directory by LUSTRO_* env vars
// or by the config file.
type PathsConfig struct {
	ConfigDir string `yaml:"config_dir"`
	CacheDir  string `yaml:"cache_dir"`
	DataDir   string `yaml:"data_dir"`
}

// Validate validates the paths configuration.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ConfigDir, validation.Required),
		validation.Field(&c.CacheDir, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
	)
}

// ConfigFile returns the path of the optional config.yaml.
func (c *PathsConfig) ConfigFile() string {
	return filepath.Join(c.ConfigDir, "config.yaml")
}

// SourcesFile returns the path of sources.yaml.
func (c *PathsConfig) SourcesFile() string {
	return filepath.Join(c.ConfigDir, "sources.yaml")
}

// StatePath returns the fetch-state file path.
func (c *PathsConfig) StatePath() string {
	return filepath.Join(c.CacheDir, "state.json")
}

// BreakingStatePath returns the breaking-news state file path.
func (c *PathsConfig) BreakingStatePath() string {
	return filepath.Join(c.CacheDir, "breaking-state.json")
}

// ArchivePath returns the article archive database path.
func (c *PathsConfig) ArchivePath() string {
	return filepath.Join(c.CacheDir, "articles.db")
}

// LogConfig holds news-log configuration.
type LogConfig struct {
	Path     string `yaml:"path"`
	MaxLines int    `yaml:"max_lines"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxLines, validation.Required, validation.Min(50)),
	)
}

// FetchConfig holds fetch-run tunables.
type FetchConfig struct {
	// BirdPath points at the social-media CLI; empty means look it up
	// on PATH.
	BirdPath string `yaml:"bird_path"`

	// ZeroWarnThreshold is how many consecutive empty fetches a source
	// accumulates before the run emits a warning for it.
	ZeroWarnThreshold int `yaml:"zero_warn_threshold"`
}

// Validate validates the fetch configuration.
func (c *FetchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ZeroWarnThreshold, validation.Required, validation.Min(1)),
	)
}

// NotifyConfig holds notifier configuration.
type NotifyConfig struct {
	// Script is an explicit path to the notifier script; empty means
	// resolve it from PATH with a ~/scripts fallback.
	Script string `yaml:"script"`
}

func xdgDir(envName, fallbackSuffix string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, fallbackSuffix)
}

func lustroDir(envName, xdgEnv, xdgSuffix string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}
	return filepath.Join(xdgDir(xdgEnv, xdgSuffix), "lustro")
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	paths := PathsConfig{
		ConfigDir: lustroDir("LUSTRO_CONFIG_DIR", "XDG_CONFIG_HOME", ".config"),
		CacheDir:  lustroDir("LUSTRO_CACHE_DIR", "XDG_CACHE_HOME", ".cache"),
		DataDir:   lustroDir("LUSTRO_DATA_DIR", "XDG_DATA_HOME", filepath.Join(".local", "share")),
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Paths: paths,
		Log: LogConfig{
			Path:     filepath.Join(paths.DataDir, "news.md"),
			MaxLines: 500,
		},
		Fetch: FetchConfig{
			ZeroWarnThreshold: 5,
		},
	}
}
