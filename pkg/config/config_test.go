package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "EGP", cfg.Currency.Default)
	assert.Equal(t, "fallback", cfg.Normalize.Mode)
	assert.Equal(t, 20, cfg.Extraction.ColumnLookahead)
	assert.Equal(t, 52.0, cfg.Output.ExchangeRates["USD"])
}

func TestBuildWithoutFile(t *testing.T) {
	cfg, err := Build("", nil)
	require.NoError(t, err)

	assert.Equal(t, Default().Currency, cfg.Currency)
	assert.Equal(t, "4/16/2025", cfg.Date.Default)
	assert.True(t, cfg.Extraction.CapturePlaceholders)
	assert.Equal(t, 60.0, cfg.Output.ExchangeRates["EUR"])
}

func TestBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invex.yaml")
	body := `
currency:
  default: gbp
  allowed: [egp, usd, gbp]
date:
  policy: run_date
extraction:
  row_window: 50
output:
  dir: /tmp/out
  exchange_rates:
    usd: 50
    gbp: 70
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Build(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "GBP", cfg.Currency.Default)
	assert.Equal(t, []string{"EGP", "USD", "GBP"}, cfg.Currency.Allowed)
	assert.Equal(t, "run_date", cfg.Date.Policy)
	assert.Equal(t, 50, cfg.Extraction.RowWindow)
	assert.Equal(t, 5, cfg.Extraction.SectionLookahead)
	assert.Equal(t, "/tmp/out", cfg.OutputPath())
	assert.Equal(t, 50.0, cfg.Output.ExchangeRates["USD"])
	assert.Equal(t, 70.0, cfg.Output.ExchangeRates["GBP"])
}

func TestBuildMissingExplicitFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestBuildMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("not an assignment\n"), 0o644))
	t.Chdir(dir)

	_, err := Build("", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestEnvAndFlagsOverride(t *testing.T) {
	t.Setenv("INVEX_CURRENCY_DEFAULT", "usd")
	t.Setenv("INVEX_NORMALIZE_MODE", "always")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("date-policy", "", "")
	flags.Bool("no-placeholders", false, "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--date-policy", "run_date", "--no-placeholders"}))

	cfg, err := Build("", flags)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Currency.Default)
	assert.Equal(t, "always", cfg.Normalize.Mode)
	assert.Equal(t, "run_date", cfg.Date.Policy)
	assert.False(t, cfg.Extraction.CapturePlaceholders)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Currency.Default = "GBP"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Normalize.Mode = "sometimes"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.Extraction.RowWindow = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
