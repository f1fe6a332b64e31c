package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for wingroute.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Console  ConsoleConfig  `yaml:"console"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Archive  ArchiveConfig  `yaml:"archive"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ConsoleConfig contains console connection and query tuning settings.
type ConsoleConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Interface is the recording interface whose outputs are resolved:
	// USB (48 slots), MOD or CRD (64 slots).
	Interface string `yaml:"interface"`

	// BatchSize bounds requests in flight per query round.
	BatchSize int `yaml:"batch_size"`

	// QueryTimeoutMs is the reply drain window per round, in milliseconds.
	QueryTimeoutMs int `yaml:"query_timeout_ms"`

	// ProbeTimeoutMs is the address-space probe's drain window.
	ProbeTimeoutMs int `yaml:"probe_timeout_ms"`

	// QueryAttempts is the retry-round ceiling per batch.
	QueryAttempts int `yaml:"query_attempts"`
}

// SnapshotConfig contains track resolution and output settings.
type SnapshotConfig struct {
	// NameMode selects the metadata layer tracks are named from:
	// CH (channel strips), SRC (input labels), HW (jack positions).
	NameMode string `yaml:"name_mode"`

	// ForceHWColors colors every routed track by its hardware group.
	ForceHWColors bool `yaml:"force_hw_colors"`

	// OutputPath is where the routing JSON is written.
	OutputPath string `yaml:"output_path"`
}

// ArchiveConfig contains SQLite snapshot archive settings.
type ArchiveConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// KeepDays is the retention window applied by pruning. Zero keeps
	// everything.
	KeepDays int `yaml:"keep_days"`
}

// MQTTConfig contains MQTT announce settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains run-metrics sink settings. The sink writes
// one point per run, so there is nothing to tune beyond the server
// coordinates.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A path ending in ".txt" is read as the original tool's flat
// wing_config.txt format instead of YAML. A missing file is not an
// error: defaults apply, plus a legacy wing_config.txt in the working
// directory when one exists, so the tool drops in where the original
// script ran.
//
// Environment variables follow the pattern: WINGROUTE_SECTION_KEY
// For example: WINGROUTE_CONSOLE_HOST, WINGROUTE_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML (or legacy .txt) configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFile merges one configuration file into cfg, dispatching on the
// file format and falling back to a local legacy file when the primary
// path does not exist.
func loadFile(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".txt") {
		if err := loadLegacy(cfg, path); err != nil {
			return fmt.Errorf("reading legacy config: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if _, statErr := os.Stat(legacyConfigName); statErr == nil {
			if err := loadLegacy(cfg, legacyConfigName); err != nil {
				return fmt.Errorf("reading legacy config: %w", err)
			}
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// legacyConfigName is the original tool's flat config file, looked for
// in the working directory when no YAML config exists.
const legacyConfigName = "wing_config.txt"

// loadLegacy merges a flat KEY=value file into cfg. Only the keys the
// original tool understood are honored; unknown keys and comment lines
// are skipped.
func loadLegacy(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "IP":
			cfg.Console.Host = value
		case "INTERFACE":
			cfg.Console.Interface = value
		case "NAME_MODE":
			cfg.Snapshot.NameMode = value
		case "FORCE_HW_COLORS":
			cfg.Snapshot.ForceHWColors = value == "1"
		}
	}
	return scanner.Err()
}

// defaultConfig returns a Config with the original tool's defaults.
func defaultConfig() *Config {
	return &Config{
		Console: ConsoleConfig{
			Host:           "192.168.8.3",
			Port:           2223,
			Interface:      "USB",
			BatchSize:      1000,
			QueryTimeoutMs: 300,
			ProbeTimeoutMs: 150,
			QueryAttempts:  4,
		},
		Snapshot: SnapshotConfig{
			NameMode:   "CH",
			OutputPath: "wing_routing.json",
		},
		Archive: ArchiveConfig{
			Path:        "data/wingroute.db",
			WALMode:     true,
			BusyTimeout: 5,
			KeepDays:    90,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "wingroute",
			},
			QoS: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern:
// WINGROUTE_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	// Console
	if v := os.Getenv("WINGROUTE_CONSOLE_HOST"); v != "" {
		cfg.Console.Host = v
	}
	if v := os.Getenv("WINGROUTE_CONSOLE_INTERFACE"); v != "" {
		cfg.Console.Interface = v
	}

	// Snapshot
	if v := os.Getenv("WINGROUTE_SNAPSHOT_NAME_MODE"); v != "" {
		cfg.Snapshot.NameMode = v
	}
	if v := os.Getenv("WINGROUTE_SNAPSHOT_OUTPUT_PATH"); v != "" {
		cfg.Snapshot.OutputPath = v
	}

	// Archive
	if v := os.Getenv("WINGROUTE_ARCHIVE_PATH"); v != "" {
		cfg.Archive.Path = v
	}

	// MQTT
	if v := os.Getenv("WINGROUTE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("WINGROUTE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WINGROUTE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("WINGROUTE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("WINGROUTE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Console validation
	if c.Console.Host == "" {
		errs = append(errs, "console.host is required")
	}
	if c.Console.Port < 1 || c.Console.Port > 65535 {
		errs = append(errs, "console.port must be between 1 and 65535")
	}
	switch strings.ToUpper(c.Console.Interface) {
	case "USB", "MOD", "CRD":
	default:
		errs = append(errs, "console.interface must be USB, MOD, or CRD")
	}
	if c.Console.BatchSize < 1 {
		errs = append(errs, "console.batch_size must be at least 1")
	}
	if c.Console.QueryAttempts < 1 {
		errs = append(errs, "console.query_attempts must be at least 1")
	}

	// Snapshot validation
	switch strings.ToUpper(c.Snapshot.NameMode) {
	case "CH", "SRC", "HW":
	default:
		errs = append(errs, "snapshot.name_mode must be CH, SRC, or HW")
	}
	if c.Snapshot.OutputPath == "" {
		errs = append(errs, "snapshot.output_path is required")
	}

	// Archive validation
	if c.Archive.Enabled && c.Archive.Path == "" {
		errs = append(errs, "archive.path is required when archive is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set WINGROUTE_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// QueryTimeout returns the bulk query drain window as a Duration.
func (c *ConsoleConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// ProbeTimeout returns the probe drain window as a Duration.
func (c *ConsoleConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}
