package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/encoding/htmlindex"
)

// Prefix is the environment variable prefix, e.g. CALCULATOR_PRECISION.
const Prefix = "CALCULATOR"

const (
	historyFileName = "calculator_history.csv"
	logFileName     = "calculator.log"
)

// Config holds the calculator settings. It is built once at startup and
// handed to the engine by pointer; nothing mutates it afterwards.
type Config struct {
	BaseDir         string          `envconfig:"BASE_DIR"`
	MaxHistorySize  int             `envconfig:"MAX_HISTORY_SIZE" default:"1000"`
	AutoSave        bool            `envconfig:"AUTO_SAVE" default:"true"`
	Precision       int             `envconfig:"PRECISION" default:"10"`
	MaxInputValue   decimal.Decimal `envconfig:"MAX_INPUT_VALUE" default:"1000000"`
	DefaultEncoding string          `envconfig:"DEFAULT_ENCODING" default:"utf-8"`
	LogLevel        string          `envconfig:"LOG_LEVEL" default:"info"`

	// Optional path overrides. Empty means "derive from BaseDir".
	LogDirPath      string `envconfig:"LOG_DIR"`
	HistoryDirPath  string `envconfig:"HISTORY_DIR"`
	HistoryFilePath string `envconfig:"HISTORY_FILE"`
	LogFilePath     string `envconfig:"LOG_FILE"`

	OTLPEnabled     bool   `envconfig:"OTLP_ENABLED" default:"false"`
	DiagnosticsAddr string `envconfig:"DIAGNOSTICS_ADDR"`
}

// Default returns a Config with every default applied, rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		BaseDir:         baseDir,
		MaxHistorySize:  1000,
		AutoSave:        true,
		Precision:       10,
		MaxInputValue:   decimal.NewFromInt(1000000),
		DefaultEncoding: "utf-8",
		LogLevel:        "info",
	}
}

// Load reads the CALCULATOR_* environment into a Config and validates it.
// An unset base directory falls back to the working directory.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg.BaseDir = wd
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field and reports the first invalid one.
func (c *Config) Validate() error {
	if c.MaxHistorySize <= 0 {
		return &ConfigurationError{Field: "max_history_size", Msg: "maximum history size must be positive"}
	}
	if c.Precision <= 0 {
		return &ConfigurationError{Field: "precision", Msg: "precision must be a positive integer"}
	}
	if !c.MaxInputValue.IsPositive() {
		return &ConfigurationError{Field: "max_input_value", Msg: "maximum input value must be a positive number"}
	}
	if _, err := htmlindex.Get(c.DefaultEncoding); err != nil {
		return &ConfigurationError{Field: "default_encoding", Msg: fmt.Sprintf("unsupported encoding %q", c.DefaultEncoding)}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &ConfigurationError{Field: "log_level", Msg: fmt.Sprintf("unknown log level %q", c.LogLevel)}
	}
	return nil
}

// LogDir is the directory holding log files.
func (c *Config) LogDir() string {
	return resolve(c.LogDirPath, filepath.Join(c.BaseDir, "logs"))
}

// HistoryDir is the directory holding the history file.
func (c *Config) HistoryDir() string {
	return resolve(c.HistoryDirPath, filepath.Join(c.BaseDir, "history"))
}

// HistoryFile is the CSV file history is saved to and loaded from.
func (c *Config) HistoryFile() string {
	return resolve(c.HistoryFilePath, filepath.Join(c.HistoryDir(), historyFileName))
}

// LogFile is the file the application logger writes to.
func (c *Config) LogFile() string {
	return resolve(c.LogFilePath, filepath.Join(c.LogDir(), logFileName))
}

func resolve(override, fallback string) string {
	p := fallback
	if override != "" {
		p = override
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
