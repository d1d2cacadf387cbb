package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultListen       = ":3000"
	defaultConfigDir    = "."
	defaultAppConfig    = "config.json"
	defaultDownloadPath = "./downloads/"

	envPrefix       = "CFGPANEL_"
	envListen       = envPrefix + "LISTEN"
	envConfigDir    = envPrefix + "CONFIG_DIR"
	envAppConfig    = envPrefix + "APP_CONFIG"
	envLogLevel     = envPrefix + "LOG_LEVEL"
	envDownloadPath = envPrefix + "DOWNLOAD_PATH"
	envHelpFile     = envPrefix + "HELP_FILE"
)

type TemplateConfig struct {
	DownloadPath string `yaml:"download_path"` // Value of `path:` in newly created files
}

type Config struct {
	Listen         string         `yaml:"listen"`
	ConfigDir      string         `yaml:"config_dir"`
	AppConfigFile  string         `yaml:"app_config"`
	LogLevel       string         `yaml:"log_level"`
	HelpFile       string         `yaml:"help_file"` // Markdown shown in the panel instead of the built-in help
	TemplateConfig TemplateConfig `yaml:"template"`
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}

	if c.ConfigDir == "" {
		c.ConfigDir = defaultConfigDir
	}

	if c.AppConfigFile == "" {
		c.AppConfigFile = defaultAppConfig
	}

	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}

	if c.TemplateConfig.DownloadPath == "" {
		c.TemplateConfig.DownloadPath = defaultDownloadPath
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	info, err := os.Stat(c.ConfigDir)
	if err != nil {
		return fmt.Errorf("cannot stat config dir %s: %w", c.ConfigDir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("config dir %s is not a directory", c.ConfigDir)
	}

	return nil
}

// AppConfigPath is the side-file location. A relative app_config lives next to the yaml files.
func (c *Config) AppConfigPath() string {
	if filepath.IsAbs(c.AppConfigFile) {
		return c.AppConfigFile
	}

	return filepath.Join(c.ConfigDir, c.AppConfigFile)
}

// Load reads the yaml file (a missing one means defaults), then applies .env and CFGPANEL_* overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		envListen:       &c.Listen,
		envConfigDir:    &c.ConfigDir,
		envAppConfig:    &c.AppConfigFile,
		envLogLevel:     &c.LogLevel,
		envDownloadPath: &c.TemplateConfig.DownloadPath,
		envHelpFile:     &c.HelpFile,
	} {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			*field = value
		}
	}
}
