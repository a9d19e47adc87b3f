package config

import (
	"os"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel   = "info"
	DefaultConsole    = "stdout"
	DefaultSerialBaud = 115200
	DefaultSignalFile = "/run/hibernatectl/comparator"
	DefaultDBPath     = "/var/lib/hibernatectl/telemetry.db"

	configEnvVar = "HIBERNATECTL_CONFIG"
	configName   = "hibernatectl"
)

// Config is loaded once at boot and treated as immutable afterwards. The
// timing constants of the power loop are not configurable: they live next
// to the state machine.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`

	// Console selects the debug console backend: "stdout" or "serial"
	Console    string `mapstructure:"console"`
	SerialPort string `mapstructure:"serial_port"`
	SerialBaud int    `mapstructure:"serial_baud"`

	// SignalFile drives the simulated comparator input
	SignalFile string `mapstructure:"signal_file"`

	// Hardware variant capability flags, resolved at configuration time
	HighZOnSleep bool `mapstructure:"highz_on_sleep"`
	SecureBoot   bool `mapstructure:"secure_boot"`

	// FailCommit injects a hibernate commit failure (recovery-path drill)
	FailCommit bool `mapstructure:"fail_commit"`

	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"database"`
}

func defaults() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		Console:     DefaultConsole,
		SerialBaud:  DefaultSerialBaud,
		SignalFile:  DefaultSignalFile,
		TelemetryDB: DefaultDBPath,
	}
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := defaults()

	v := viper.New()
	v.SetDefault("log_level", config.LogLevel)
	v.SetDefault("console", config.Console)
	v.SetDefault("serial_baud", config.SerialBaud)
	v.SetDefault("signal_file", config.SignalFile)
	v.SetDefault("database", config.TelemetryDB)

	flags := pflag.NewFlagSet("hibernatectl", pflag.ContinueOnError)
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("console", "", "Debug console backend (stdout, serial)")
	flags.String("serial-port", "", "Serial port for the debug console")
	flags.Int("serial-baud", 0, "Serial baud rate for the debug console")
	flags.String("signal-file", "", "Comparator signal file")
	flags.Bool("highz-on-sleep", false, "Force console bank high-Z before sleep")
	flags.Bool("fail-commit", false, "Inject a hibernate commit failure")
	flags.Bool("telemetry", false, "Enable telemetry collection")
	flags.String("database", "", "Telemetry database path")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	// Load configuration from file: explicit path via env, /etc otherwise
	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	// Command line flags override file values
	flags.Visit(func(f *pflag.Flag) {
		key := f.Name
		switch key {
		case "log-level":
			key = "log_level"
		case "serial-port":
			key = "serial_port"
		case "serial-baud":
			key = "serial_baud"
		case "signal-file":
			key = "signal_file"
		case "highz-on-sleep":
			key = "highz_on_sleep"
		case "fail-commit":
			key = "fail_commit"
		}
		v.Set(key, f.Value.String())
	})

	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	switch c.Console {
	case "stdout":
	case "serial":
		if c.SerialPort == "" {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "serial console requires serial_port")
		}
		if c.SerialBaud <= 0 {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "serial console requires a positive serial_baud")
		}
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, c.Console)
	}

	if c.SignalFile == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "signal_file must not be empty")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry requires a database path")
	}

	return nil
}
