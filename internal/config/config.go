package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds submitter settings. Sources are applied in increasing priority:
// defaults, JSON file, command-line flags, environment.
type Config struct {
	ServerURL       string        `env:"SERVER_URL"`
	EndpointPath    string        `env:"ENDPOINT_PATH"`
	ListenAddress   string        `env:"LISTEN_ADDRESS"`
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	SubmitPolicy    string        `env:"SUBMIT_POLICY"`
	LogLevel        string        `env:"LOG_LEVEL"`
	ConfigPath      string        `env:"CONFIG"`

	// URLs are the positional arguments; when present the submitter runs once
	// over them instead of serving the page.
	URLs []string
}

type jsonConfig struct {
	ServerURL       *string `json:"server_url"`
	EndpointPath    *string `json:"endpoint_path"`
	ListenAddress   *string `json:"listen_address"`
	NotificationTTL *string `json:"notification_ttl"`
	RequestTimeout  *string `json:"request_timeout"`
	SubmitPolicy    *string `json:"submit_policy"`
	LogLevel        *string `json:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		ServerURL:       "http://localhost:8080",
		EndpointPath:    "/add_url",
		ListenAddress:   ":8081",
		NotificationTTL: 3 * time.Second,
		RequestTimeout:  10 * time.Second,
		SubmitPolicy:    "reject",
		LogLevel:        "info",
	}
}

// NewConfig loads the configuration from os.Args and the environment.
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config from the given command-line arguments and the environment.
func Load(args []string) (*Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("submitter", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "Queue server base URL (e.g. http://search.libre)")
	fs.StringVar(&cfg.EndpointPath, "e", cfg.EndpointPath, "Queue endpoint path")
	fs.StringVar(&cfg.ListenAddress, "a", cfg.ListenAddress, "Address the submission page listens on")
	fs.DurationVar(&cfg.NotificationTTL, "t", cfg.NotificationTTL, "How long a notification stays visible")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "Timeout of a single submission request")
	fs.StringVar(&cfg.SubmitPolicy, "p", cfg.SubmitPolicy, "Overlapping submissions: reject, replace or queue")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Log level")
	fs.StringVar(&cfg.ConfigPath, "c", cfg.ConfigPath, "Path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.URLs = fs.Args()

	if envPath := os.Getenv("CONFIG"); envPath != "" {
		cfg.ConfigPath = envPath
	}

	if cfg.ConfigPath != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})

		if err := applyJSON(cfg, cfg.ConfigPath, set); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// applyJSON copies values from the file into cfg, skipping fields whose flag
// was given explicitly.
func applyJSON(cfg *Config, path string, flagSet map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString := func(flagName string, src *string, dst *string) {
		if src != nil && !flagSet[flagName] {
			*dst = *src
		}
	}
	setDuration := func(flagName string, src *string, dst *time.Duration) error {
		if src == nil || flagSet[flagName] {
			return nil
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		*dst = d
		return nil
	}

	setString("s", jc.ServerURL, &cfg.ServerURL)
	setString("e", jc.EndpointPath, &cfg.EndpointPath)
	setString("a", jc.ListenAddress, &cfg.ListenAddress)
	setString("p", jc.SubmitPolicy, &cfg.SubmitPolicy)
	setString("l", jc.LogLevel, &cfg.LogLevel)

	if err := setDuration("t", jc.NotificationTTL, &cfg.NotificationTTL); err != nil {
		return err
	}
	return setDuration("r", jc.RequestTimeout, &cfg.RequestTimeout)
}
