package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vango-dev/hallocord/internal/errors"
	"github.com/vango-dev/hallocord/pkg/gateway"
	"github.com/vango-dev/hallocord/pkg/intents"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hallocord.json"

	// DefaultMetricsAddress is where the CLI serves /metrics.
	DefaultMetricsAddress = "127.0.0.1:9464"

	// DefaultMetricsNamespace prefixes every metric name.
	DefaultMetricsNamespace = "hallocord"

	// DefaultClientName is sent as the browser and device properties.
	DefaultClientName = "hallocord"
)

// Environment variables that override file settings.
const (
	EnvToken      = "HALLOCORD_TOKEN"
	EnvGatewayURL = "HALLOCORD_GATEWAY_URL"
	EnvLogLevel   = "HALLOCORD_LOG_LEVEL"
)

// Config represents the complete hallocord.json configuration.
type Config struct {
	// Gateway selects the gateway endpoint.
	Gateway GatewayConfig `json:"gateway"`

	// Intents lists intent names, e.g. ["GUILDS", "GUILD_MESSAGES"].
	Intents []string `json:"intents,omitempty"`

	// Properties identifies the client in Identify.
	Properties PropertiesConfig `json:"properties"`

	// Compress requests zlib-compressed binary payloads.
	Compress bool `json:"compress,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics"`

	// Log configures structured logging.
	Log LogConfig `json:"log"`

	// Token is the credential. It is only read from the environment or
	// flags and never written to disk.
	Token string `json:"-"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// GatewayConfig contains the gateway endpoint settings.
type GatewayConfig struct {
	// URL is the gateway base URL (default: wss://gateway.discord.gg).
	URL string `json:"url,omitempty"`

	// Version is the gateway API version, 9 or 10.
	Version int `json:"version,omitempty"`

	// Encoding is the payload encoding. Only "json" is supported.
	Encoding string `json:"encoding,omitempty"`
}

// PropertiesConfig contains the Identify connection properties.
type PropertiesConfig struct {
	OS      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
	Device  string `json:"device,omitempty"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Address   string `json:"address,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Intents: []string{"GUILDS", "GUILD_MESSAGES"},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for hallocord.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H141").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("H120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("H120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("H120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Gateway.URL == "" {
		c.Gateway.URL = gateway.DefaultGatewayURL
	}
	if c.Gateway.Version == 0 {
		c.Gateway.Version = gateway.DefaultVersion
	}
	if c.Gateway.Encoding == "" {
		c.Gateway.Encoding = gateway.DefaultEncoding
	}

	if c.Properties.OS == "" {
		c.Properties.OS = runtime.GOOS
	}
	if c.Properties.Browser == "" {
		c.Properties.Browser = DefaultClientName
	}
	if c.Properties.Device == "" {
		c.Properties.Device = DefaultClientName
	}

	if c.Metrics.Address == "" {
		c.Metrics.Address = DefaultMetricsAddress
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ApplyEnv overrides settings from the environment. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvGatewayURL); v != "" {
		c.Gateway.URL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Address(); err != nil {
		return errors.New("H122").Wrap(err)
	}
	if _, err := c.IntentMask(); err != nil {
		return err
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("H123").
			WithDetail("Unknown log level " + c.Log.Level + ". Use debug, info, warn or error.")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("H123").
			WithDetail("Unknown log format " + c.Log.Format + ". Use text or json.")
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Address); err != nil {
			return errors.New("H124").Wrap(err)
		}
	}
	return nil
}

// Address returns the dialable gateway address.
func (c *Config) Address() (string, error) {
	return gateway.BuildAddress(c.Gateway.URL, gateway.AddressOptions{
		Version:  c.Gateway.Version,
		Encoding: c.Gateway.Encoding,
	})
}

// IntentMask resolves Intents to a bitmask.
func (c *Config) IntentMask() (intents.Intent, error) {
	mask, err := intents.Parse(c.Intents...)
	if err != nil {
		return 0, errors.New("H020").Wrap(err)
	}
	return mask, nil
}

// GatewayProperties returns the Identify properties.
func (c *Config) GatewayProperties() gateway.Properties {
	return gateway.Properties{
		OS:      c.Properties.OS,
		Browser: c.Properties.Browser,
		Device:  c.Properties.Device,
	}
}

// Compression returns the payload compression mode.
func (c *Config) Compression() gateway.Compression {
	if c.Compress {
		return gateway.CompressionZlib
	}
	return gateway.CompressionNone
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing hallocord.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("H141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent containing hallocord.json. If none exists the
// defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.Code(err) == "H141" {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}
