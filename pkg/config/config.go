package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "INVEX"

type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Currency   CurrencyConfig   `mapstructure:"currency" yaml:"currency"`
	Date       DateConfig       `mapstructure:"date" yaml:"date"`
	Normalize  NormalizeConfig  `mapstructure:"normalize" yaml:"normalize"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// CurrencyConfig holds the currency policy. Default is used when nothing in
// the sheet resolves to one of Allowed.
type CurrencyConfig struct {
	Default string   `mapstructure:"default" yaml:"default" validate:"required,len=3"`
	Allowed []string `mapstructure:"allowed" yaml:"allowed" validate:"required,min=1,dive,len=3"`
}

// DateConfig: with policy "fixed" Default is used verbatim, with "run_date"
// the current date is rendered with Layout.
type DateConfig struct {
	Default string `mapstructure:"default" yaml:"default" validate:"required"`
	Policy  string `mapstructure:"policy" yaml:"policy" validate:"oneof=fixed run_date"`
	Layout  string `mapstructure:"layout" yaml:"layout" validate:"required"`
}

type NormalizeConfig struct {
	Mode           string   `mapstructure:"mode" yaml:"mode" validate:"oneof=off fallback always"`
	SourceEncoding string   `mapstructure:"source_encoding" yaml:"source_encoding" validate:"required"`
	TargetEncoding string   `mapstructure:"target_encoding" yaml:"target_encoding" validate:"required"`
	Protected      []string `mapstructure:"protected" yaml:"protected"`
}

type ExtractionConfig struct {
	ColumnLookahead     int  `mapstructure:"column_lookahead" yaml:"column_lookahead" validate:"min=1"`
	SectionLookahead    int  `mapstructure:"section_lookahead" yaml:"section_lookahead" validate:"min=1"`
	RowWindow           int  `mapstructure:"row_window" yaml:"row_window" validate:"min=1"`
	CapturePlaceholders bool `mapstructure:"capture_placeholders" yaml:"capture_placeholders"`
	FuzzyHeaders        bool `mapstructure:"fuzzy_headers" yaml:"fuzzy_headers"`
}

type OutputConfig struct {
	Dir           string             `mapstructure:"dir" yaml:"dir"`
	DocumentType  string             `mapstructure:"document_type" yaml:"document_type" validate:"required"`
	ExchangeRates map[string]float64 `mapstructure:"exchange_rates" yaml:"exchange_rates"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Currency: CurrencyConfig{
			Default: "EGP",
			Allowed: []string{"EGP", "USD", "EUR"},
		},
		Date: DateConfig{
			Default: "4/16/2025",
			Policy:  "fixed",
			Layout:  "1/2/2006",
		},
		Normalize: NormalizeConfig{
			Mode:           "fallback",
			SourceEncoding: "windows-1252",
			TargetEncoding: "windows-1256",
		},
		Extraction: ExtractionConfig{
			ColumnLookahead:     20,
			SectionLookahead:    5,
			RowWindow:           30,
			CapturePlaceholders: true,
			FuzzyHeaders:        true,
		},
		Output: OutputConfig{
			DocumentType:  "I",
			ExchangeRates: map[string]float64{"USD": 52, "EUR": 60},
		},
		Server: ServerConfig{Addr: "0.0.0.0:3000"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("currency.default", d.Currency.Default)
	v.SetDefault("currency.allowed", d.Currency.Allowed)
	v.SetDefault("date.default", d.Date.Default)
	v.SetDefault("date.policy", d.Date.Policy)
	v.SetDefault("date.layout", d.Date.Layout)
	v.SetDefault("normalize.mode", d.Normalize.Mode)
	v.SetDefault("normalize.source_encoding", d.Normalize.SourceEncoding)
	v.SetDefault("normalize.target_encoding", d.Normalize.TargetEncoding)
	v.SetDefault("normalize.protected", []string{})
	v.SetDefault("extraction.column_lookahead", d.Extraction.ColumnLookahead)
	v.SetDefault("extraction.section_lookahead", d.Extraction.SectionLookahead)
	v.SetDefault("extraction.row_window", d.Extraction.RowWindow)
	v.SetDefault("extraction.capture_placeholders", d.Extraction.CapturePlaceholders)
	v.SetDefault("extraction.fuzzy_headers", d.Extraction.FuzzyHeaders)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.document_type", d.Output.DocumentType)
	v.SetDefault("output.exchange_rates", d.Output.ExchangeRates)
	v.SetDefault("server.addr", d.Server.Addr)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"output":          "output.dir",
	"currency":        "currency.default",
	"default-date":    "date.default",
	"date-policy":     "date.policy",
	"normalize":       "normalize.mode",
	"no-placeholders": "extraction.capture_placeholders",
	"log-level":       "log.level",
	"addr":            "server.addr",
}

// Build loads configuration from defaults, an optional .env file, an optional
// YAML config file, INVEX_* environment variables and flags, in that order of
// increasing precedence. An empty cfgFile looks for ./config.yaml.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if name == "no-placeholders" {
				v.Set(key, f.Value.String() != "true")
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Currency.Default = strings.ToUpper(cfg.Currency.Default)
	for i, c := range cfg.Currency.Allowed {
		cfg.Currency.Allowed[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	// viper lowercases map keys
	rates := make(map[string]float64, len(cfg.Output.ExchangeRates))
	for code, rate := range cfg.Output.ExchangeRates {
		rates[strings.ToUpper(code)] = rate
	}
	cfg.Output.ExchangeRates = rates

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	allowed := false
	for _, code := range c.Currency.Allowed {
		if code == c.Currency.Default {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: default currency %s is not in allowed %v", ErrInvalidConfig, c.Currency.Default, c.Currency.Allowed)
	}
	return nil
}

// OutputPath returns the configured output directory, "" meaning next to the input.
func (c *Config) OutputPath() string {
	return c.Output.Dir
}

// FromEnv is a shortcut for Build without a config file or flags.
func FromEnv() (*Config, error) {
	if _, err := os.Stat("config.yaml"); err == nil {
		return Build("config.yaml", nil)
	}
	return Build("", nil)
}
