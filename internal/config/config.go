package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

const (
	EnvConfigPath  = "GAUFRE_CONFIG"
	EnvTimeout     = "GAUFRE_TIMEOUT"
	EnvDBPath      = "GAUFRE_DB_PATH"
	EnvLogFile     = "GAUFRE_LOG_FILE"
	EnvLogLevel    = "GAUFRE_LOG_LEVEL"
	EnvDownloadDir = "GAUFRE_DOWNLOAD_DIR"
	EnvPlain       = "GAUFRE_PLAIN"

	defaultTimeout = 10 * time.Second
)

// ErrUsage is returned when the start address argument is missing.
var ErrUsage = errors.New("Usage: gaufre HOST[:PORT]")

// Config holds runtime settings. The core only ever reads it.
type Config struct {
	Start       gopher.Address
	DefaultPort int
	Timeout     time.Duration
	DBPath      string
	LogFile     string
	LogLevel    string
	DownloadDir string
	Plain       bool
	ConfigPath  string
	Commands    Commands
	UI          UI
	Styles      map[string]string
}

// Commands name external programs used for items the client cannot show.
type Commands struct {
	Browser string `toml:"browser"`
	Image   string `toml:"image"`
	Telnet  string `toml:"telnet"`
	Text    string `toml:"text"`
}

type UI struct {
	CommandPrefix string `toml:"command_prefix"`
	WrapWidth     int    `toml:"wrap_width"`
	ShowNumbers   bool   `toml:"show_numbers"`
}

type fileConfig struct {
	Network struct {
		DefaultPort int    `toml:"default_port"`
		Timeout     string `toml:"timeout"`
	} `toml:"network"`
	Storage struct {
		DBPath      string `toml:"db_path"`
		DownloadDir string `toml:"download_dir"`
	} `toml:"storage"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	Commands Commands          `toml:"commands"`
	UI       fileUI            `toml:"ui"`
	Styles   map[string]string `toml:"styles"`
}

// fileUI keeps unset keys nil so a partial [ui] section leaves the other
// defaults alone.
type fileUI struct {
	CommandPrefix *string `toml:"command_prefix"`
	WrapWidth     *int    `toml:"wrap_width"`
	ShowNumbers   *bool   `toml:"show_numbers"`
}

func Defaults() Config {
	return Config{
		DefaultPort: gopher.DefaultPort,
		Timeout:     defaultTimeout,
		DBPath:      "gaufre.db",
		LogFile:     "gaufre.log",
		LogLevel:    "info",
		DownloadDir: ".",
		Commands: Commands{
			Browser: "xdg-open",
			Image:   "feh",
			Telnet:  "telnet",
		},
		UI: UI{
			CommandPrefix: "/",
			ShowNumbers:   true,
		},
		Styles: map[string]string{},
	}
}

// LoadFromEnv reads the process arguments and environment.
func LoadFromEnv() (Config, error) {
	return Load(os.Args[1:], os.Environ())
}

// Load builds the configuration from defaults, the optional TOML file, the
// environment and finally the HOST[:PORT] argument.
func Load(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	cfg := Defaults()

	if path := env[EnvConfigPath]; path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
		cfg.ConfigPath = path
	}
	if err := cfg.mergeEnv(env); err != nil {
		return Config{}, err
	}

	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return Config{}, ErrUsage
	}
	start, err := gopher.ParseAddress(args[0], cfg.DefaultPort)
	if err != nil {
		return Config{}, fmt.Errorf("invalid start address: %w", err)
	}
	cfg.Start = start

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if fc.Network.DefaultPort != 0 {
		c.DefaultPort = fc.Network.DefaultPort
	}
	if fc.Network.Timeout != "" {
		d, err := time.ParseDuration(fc.Network.Timeout)
		if err != nil {
			return fmt.Errorf("network.timeout: %w", err)
		}
		c.Timeout = d
	}
	setIfNotEmpty(&c.DBPath, fc.Storage.DBPath)
	setIfNotEmpty(&c.DownloadDir, fc.Storage.DownloadDir)
	setIfNotEmpty(&c.LogFile, fc.Log.File)
	setIfNotEmpty(&c.LogLevel, fc.Log.Level)
	setIfNotEmpty(&c.Commands.Browser, fc.Commands.Browser)
	setIfNotEmpty(&c.Commands.Image, fc.Commands.Image)
	setIfNotEmpty(&c.Commands.Telnet, fc.Commands.Telnet)
	setIfNotEmpty(&c.Commands.Text, fc.Commands.Text)
	if fc.UI.CommandPrefix != nil {
		c.UI.CommandPrefix = *fc.UI.CommandPrefix
	}
	if fc.UI.WrapWidth != nil {
		c.UI.WrapWidth = *fc.UI.WrapWidth
	}
	if fc.UI.ShowNumbers != nil {
		c.UI.ShowNumbers = *fc.UI.ShowNumbers
	}
	for k, v := range fc.Styles {
		c.Styles[k] = v
	}
	return nil
}

func (c *Config) mergeEnv(env map[string]string) error {
	if raw := strings.TrimSpace(env[EnvTimeout]); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	setIfNotEmpty(&c.DBPath, env[EnvDBPath])
	setIfNotEmpty(&c.LogFile, env[EnvLogFile])
	setIfNotEmpty(&c.LogLevel, env[EnvLogLevel])
	setIfNotEmpty(&c.DownloadDir, env[EnvDownloadDir])
	if raw := strings.TrimSpace(env[EnvPlain]); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %s", EnvPlain, raw)
		}
		c.Plain = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.DefaultPort < 1 || c.DefaultPort > 65535 {
		return fmt.Errorf("default port out of range: %d", c.DefaultPort)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if len([]rune(c.UI.CommandPrefix)) > 1 {
		return fmt.Errorf("command prefix must be a single character: %q", c.UI.CommandPrefix)
	}
	if c.UI.WrapWidth < 0 {
		return fmt.Errorf("wrap width must be >= 0 (got %d)", c.UI.WrapWidth)
	}
	for key, value := range c.Styles {
		if !strings.HasPrefix(value, "#") && !isANSIIndex(value) {
			return fmt.Errorf("style %s: colour must be #hex or 0-255: %s", key, value)
		}
	}
	return nil
}

func isANSIIndex(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}

func setIfNotEmpty(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}
