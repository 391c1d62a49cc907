package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel      = "info"
	DefaultEnvPrefix     = "QOSPROBE"
	DefaultBaseName      = "metricas"
	DefaultPingPath      = "ping"
	DefaultTopPath       = "top"
	DefaultProbeTimeout  = 30 * time.Second
	DefaultJitterRetries = 5
	DefaultLossCount     = 5
	DefaultCPUParseMode  = "column"
	DefaultJournalPath   = "/var/lib/qosprobe/journal.db"
	DefaultJournalBatch  = 32
	DefaultJournalFlush  = 5

	configName = "qosprobe"
)

type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Target     string           `mapstructure:"target"`
	Log        LogConfig        `mapstructure:"log"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Jitter     JitterConfig     `mapstructure:"jitter"`
	PacketLoss PacketLossConfig `mapstructure:"packet_loss"`
	CPU        CPUConfig        `mapstructure:"cpu"`
	Journal    JournalConfig    `mapstructure:"journal"`
}

// LogConfig locates the metric record file
type LogConfig struct {
	Dir          string `mapstructure:"dir"`
	BaseName     string `mapstructure:"basename"`
	EscapeMarkup bool   `mapstructure:"escape_markup"`
}

type ProbeConfig struct {
	PingPath string        `mapstructure:"ping_path"`
	TopPath  string        `mapstructure:"top_path"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Rate     float64       `mapstructure:"rate"`
}

type JitterConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

type PacketLossConfig struct {
	Count int `mapstructure:"count"`
}

type CPUConfig struct {
	ParseMode string `mapstructure:"parse_mode"`
}

type JournalConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Path         string `mapstructure:"path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

// Load reads the configuration file, environment and command line flags,
// in increasing order of precedence, and validates the result.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		envPrefix: DefaultEnvPrefix,
		args:      os.Args[1:],
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	flags := newFlagSet()
	if err := flags.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := o.configPath
	if f := flags.Lookup("config"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.WithData(errors.ErrReadConfig, err.Error()).
				WithMessage("Failed to read config file")
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.WithData(errors.ErrReadConfig, err.Error()).
					WithMessage("Failed to read config file")
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("target", "")
	v.SetDefault("log.dir", os.TempDir())
	v.SetDefault("log.basename", DefaultBaseName)
	v.SetDefault("log.escape_markup", false)
	v.SetDefault("probe.ping_path", DefaultPingPath)
	v.SetDefault("probe.top_path", DefaultTopPath)
	v.SetDefault("probe.timeout", DefaultProbeTimeout)
	v.SetDefault("probe.rate", 0.0)
	v.SetDefault("jitter.max_attempts", DefaultJitterRetries)
	v.SetDefault("packet_loss.count", DefaultLossCount)
	v.SetDefault("cpu.parse_mode", DefaultCPUParseMode)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", DefaultJournalPath)
	v.SetDefault("journal.batch_size", DefaultJournalBatch)
	v.SetDefault("journal.batch_timeout", DefaultJournalFlush)
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.String("config", "", "Path to the configuration file")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.String("target", "", "Address probed by latency, jitter and packet loss")
	flags.String("log-dir", "", "Directory holding the metric record file")
	flags.Duration("timeout", DefaultProbeTimeout, "Wall-clock limit for a single probe")
	flags.Int("jitter-attempts", DefaultJitterRetries, "Maximum jitter probe rounds")
	flags.String("cpu-mode", DefaultCPUParseMode, "CPU snapshot parsing: column or header")
	flags.Bool("journal", false, "Mirror records into the sqlite journal")

	return flags
}

var flagKeys = map[string]string{
	"log-level":       "log_level",
	"target":          "target",
	"log-dir":         "log.dir",
	"timeout":         "probe.timeout",
	"jitter-attempts": "jitter.max_attempts",
	"cpu-mode":        "cpu.parse_mode",
	"journal":         "journal.enabled",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks field ranges and enumerations
func (c *Config) Validate() error {
	var problems []ValidationError

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		problems = append(problems, &validationError{"log_level", c.LogLevel, "unknown level"})
	}
	if c.Log.BaseName == "" {
		problems = append(problems, &validationError{"log.basename", c.Log.BaseName, "must not be empty"})
	}
	if c.Probe.Timeout <= 0 {
		problems = append(problems, &validationError{"probe.timeout", c.Probe.Timeout, "must be positive"})
	}
	if c.Probe.Rate < 0 {
		problems = append(problems, &validationError{"probe.rate", c.Probe.Rate, "must not be negative"})
	}
	if c.Jitter.MaxAttempts < 1 {
		problems = append(problems, &validationError{"jitter.max_attempts", c.Jitter.MaxAttempts, "must be at least 1"})
	}
	if c.PacketLoss.Count < 1 {
		problems = append(problems, &validationError{"packet_loss.count", c.PacketLoss.Count, "must be at least 1"})
	}
	if c.CPU.ParseMode != "column" && c.CPU.ParseMode != "header" {
		problems = append(problems, &validationError{"cpu.parse_mode", c.CPU.ParseMode, "must be column or header"})
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		problems = append(problems, &validationError{"journal.path", c.Journal.Path, "required when journal is enabled"})
	}

	if len(problems) == 0 {
		return nil
	}

	code := errors.ErrInvalidConfig
	if problems[0].Field() == "log_level" {
		code = errors.ErrInvalidLogLevel
	}

	return errors.New().WithData(code, problems)
}
