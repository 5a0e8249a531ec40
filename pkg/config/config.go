package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/encoding/ini"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "/etc/nmd/nmd.yaml"

// LegacyConfigFile is the INI file of older installations, read when
// DefaultConfigFile is absent and --config is not given.
const LegacyConfigFile = "/etc/nmd/nmd.ini"

// EnvPrefix namespaces environment overrides, e.g. NMD_DB_PASSWORD.
const EnvPrefix = "NMD"

// ErrInvalidConfig marks every load, decode and validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var valid = validator.New()

// Config aggregates every section read by the daemon.
type Config struct {
	DB     DBConfig      `yaml:"db" mapstructure:"db"`
	NMD    MonitorConfig `yaml:"nmd" mapstructure:"nmd"`
	Server ServerConfig  `yaml:"server" mapstructure:"server"`
	Log    ZapLogConfig  `yaml:"log" mapstructure:"log"`
}

// DBConfig describes the storage backend. Durations are whole seconds.
type DBConfig struct {
	Driver            string `yaml:"driver" mapstructure:"driver" validate:"required,oneof=mysql sqlite"`
	Host              string `yaml:"host" mapstructure:"host"`
	Port              int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	User              string `yaml:"user" mapstructure:"user"`
	Password          string `yaml:"password" mapstructure:"password"`
	DB                string `yaml:"db" mapstructure:"db" validate:"required"`
	ReconnectInterval int    `yaml:"reconnect-interval" mapstructure:"reconnect-interval" validate:"gte=0"`
	ConnectTimeout    int    `yaml:"connect-timeout" mapstructure:"connect-timeout" validate:"gte=0"`
	// UnavailableAsNull stores unavailable readings as NULL; false writes -1 and "".
	UnavailableAsNull bool `yaml:"unavailable-as-null" mapstructure:"unavailable-as-null"`
}

// ReconnectDelay is the fixed wait between failed connection attempts.
func (d DBConfig) ReconnectDelay() time.Duration {
	return time.Duration(d.ReconnectInterval) * time.Second
}

// DialTimeout is the per-attempt driver timeout; zero leaves the driver default.
func (d DBConfig) DialTimeout() time.Duration {
	return time.Duration(d.ConnectTimeout) * time.Second
}

// MonitorConfig is the "nmd" section: what to sample and how often.
type MonitorConfig struct {
	ComponentID string        `yaml:"component-id" mapstructure:"component-id" validate:"required"`
	Interval    int           `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	Source      string        `yaml:"source" mapstructure:"source" validate:"required,oneof=command native"`
	Sensors     SensorToggles `yaml:"sensors" mapstructure:"sensors"`
}

// SampleInterval is the sleep between successful cycles.
func (m MonitorConfig) SampleInterval() time.Duration {
	return time.Duration(m.Interval) * time.Second
}

// SensorToggles enables or disables each metric family. Immutable after load.
type SensorToggles struct {
	CPULoad   bool `yaml:"cpu-load" mapstructure:"cpu-load"`
	DiskSpace bool `yaml:"disk-space" mapstructure:"disk-space"`
	Uptime    bool `yaml:"uptime" mapstructure:"uptime"`
}

// ServerConfig controls the self-metrics HTTP listener.
type ServerConfig struct {
	Enable bool   `yaml:"enable" mapstructure:"enable"`
	Addr   string `yaml:"addr" mapstructure:"addr"`
}

// ZapLogConfig configures the console and rotating file sinks.
type ZapLogConfig struct {
	Level        string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format       string `yaml:"format" mapstructure:"format" validate:"required,oneof=json console"`
	Path         string `yaml:"path" mapstructure:"path"`
	MaxAge       int    `yaml:"max-age" mapstructure:"max-age" validate:"gte=0"`
	RotationSize int    `yaml:"rotation-size" mapstructure:"rotation-size" validate:"gte=0"`
}

// NewDefaultConfig returns the values used for every key absent from file, env and flags.
func NewDefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			Driver:            "mysql",
			Host:              "127.0.0.1",
			Port:              3306,
			ReconnectInterval: 5,
			ConnectTimeout:    10,
			UnavailableAsNull: true,
		},
		NMD: MonitorConfig{
			Interval: 60,
			Source:   "command",
			Sensors: SensorToggles{
				CPULoad:   true,
				DiskSpace: true,
				Uptime:    true,
			},
		},
		Server: ServerConfig{
			Enable: true,
			Addr:   "127.0.0.1:9105",
		},
		Log: ZapLogConfig{
			Level:        "info",
			Format:       "console",
			Path:         "",
			MaxAge:       7,
			RotationSize: 100,
		},
	}
}

// setDefaults registers every key with viper so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.host", d.DB.Host)
	v.SetDefault("db.port", d.DB.Port)
	v.SetDefault("db.user", d.DB.User)
	v.SetDefault("db.password", d.DB.Password)
	v.SetDefault("db.db", d.DB.DB)
	v.SetDefault("db.reconnect-interval", d.DB.ReconnectInterval)
	v.SetDefault("db.connect-timeout", d.DB.ConnectTimeout)
	v.SetDefault("db.unavailable-as-null", d.DB.UnavailableAsNull)
	v.SetDefault("nmd.component-id", d.NMD.ComponentID)
	v.SetDefault("nmd.interval", d.NMD.Interval)
	v.SetDefault("nmd.source", d.NMD.Source)
	v.SetDefault("nmd.sensors.cpu-load", d.NMD.Sensors.CPULoad)
	v.SetDefault("nmd.sensors.disk-space", d.NMD.Sensors.DiskSpace)
	v.SetDefault("nmd.sensors.uptime", d.NMD.Sensors.Uptime)
	v.SetDefault("server.enable", d.Server.Enable)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.max-age", d.Log.MaxAge)
	v.SetDefault("log.rotation-size", d.Log.RotationSize)
}

// NewViper returns a viper instance that also reads .ini files.
func NewViper() *viper.Viper {
	codecs := viper.NewCodecRegistry()
	_ = codecs.RegisterCodec("ini", ini.Codec{})
	return viper.NewWithOptions(viper.WithCodecRegistry(codecs))
}

// resolveConfigFile falls back to legacy when path is the implicit default and does not exist.
func resolveConfigFile(path string, explicit bool, legacy string) string {
	if explicit {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return path
}

// LoadConfigWithCli resolves the configuration from flags, env and the --config file.
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	v := NewViper()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("%w: bind flags: %w", ErrInvalidConfig, err)
	}
	configFile, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")
	return Load(v, resolveConfigFile(configFile, explicit, LegacyConfigFile))
}

// Load reads path (if non-empty) into v, layers env and defaults, decodes and validates.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %w", ErrInvalidConfig, path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: new decoder: %w", ErrInvalidConfig, err)
	}

	// Unmarshal via AllSettings so env-only values are included.
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("%w: decode config: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate runs tag validation and then the per-section rules.
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	if err := c.DB.Validate(); err != nil {
		return err
	}
	if err := c.NMD.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
