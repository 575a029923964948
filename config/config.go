package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CIDgravity/snakelet"
)

// config structure
type Config struct {
	API    APIConfig    `mapstructure:"API"`
	Github GithubConfig `mapstructure:"GITHUB"`
	Poller PollerConfig `mapstructure:"POLLER"`
	Store  StoreConfig  `mapstructure:"STORE"`
	Logs   LogsConfig   `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
}

type GithubConfig struct {
	Token string `mapstructure:"Token"`

	// RepositoriesPerPage is the fixed page size used by the pagination loop
	// a page shorter than this value terminates the loop
	RepositoriesPerPage int `mapstructure:"RepositoriesPerPage"`

	// MaxRepositoryPages guards the pagination loop against an upstream that
	// never returns a short page
	MaxRepositoryPages int `mapstructure:"MaxRepositoryPages"`

	TopRepositories         int `mapstructure:"TopRepositories"`
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type PollerConfig struct {
	IntervalSeconds int `mapstructure:"IntervalSeconds"`
}

type StoreConfig struct {
	FilePath string `mapstructure:"FilePath"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJson bool   `mapstructure:"OutputLogsAsJson"`
}

// Load reads config/config.toml next to the binary or in the working
// directory. When no file exists the defaults are used as is, the token can
// still come from the GITHUB_TOKEN environment variable.
func Load() (*Config, error) {
	cfg := GetDefault()

	configFilePath, err := resolveConfigFilePath()
	if err != nil {
		return nil, err
	}

	if configFilePath != "" {
		if _, err := snakelet.InitAndLoad(cfg, configFilePath); err != nil {
			return nil, err
		}
	}

	if cfg.Github.Token == "" {
		cfg.Github.Token = os.Getenv("GITHUB_TOKEN")
	}

	return cfg, nil
}

func resolveConfigFilePath() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dir + "/config/config.toml"); err == nil {
		return dir + "/config/config.toml", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if _, err := os.Stat("config/config.toml"); err == nil {
		return "config/config.toml", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	return "", nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
		},
		Github: GithubConfig{
			RepositoriesPerPage:     100,
			MaxRepositoryPages:      100,
			TopRepositories:         5,
			MaxParallelTasksAllowed: 8,
		},
		Poller: PollerConfig{
			IntervalSeconds: 60,
		},
		Store: StoreConfig{
			FilePath: "preferences.cache",
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJson: false,
		},
	}
}
