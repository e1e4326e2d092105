package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "8081"
  mode: release
database:
  enabled: true
  dbname: funding_test
funding:
  address: "0x00000000000000000000000000000000000f0001"
  beneficiary: "0x4Cb093f226983713164A62138C3F718A5b595F73"
  reward_supply: "1000000000000000000000000"
  unit: 1h
  admins:
    - "0x0000000000000000000000000000000000000a01"
  goal: "1000000000000000000"
  duration: 5
ledger:
  genesis:
    "0x0000000000000000000000000000000000000b01": "5000000000000000000"
task:
  interval: 30
  auto_withdraw: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "funding_test", cfg.Database.DBName)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, time.Hour, cfg.Funding.Unit)
	assert.Equal(t, []string{"0x0000000000000000000000000000000000000a01"}, cfg.Funding.Admins)
	assert.Equal(t, int64(5), cfg.Funding.Duration)
	assert.Len(t, cfg.Ledger.Genesis, 1)
	assert.Equal(t, 30, cfg.Task.Interval)
	assert.True(t, cfg.Task.AutoWithdraw)
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
	assert.Equal(t, "info", cfg.Log.GetLevel())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SMARTFUNDING_SERVER_PORT", "9090")
	t.Setenv("SMARTFUNDING_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad address", "funding:\n  address: nope\n"},
		{"bad supply", "funding:\n  reward_supply: \"-1\"\n"},
		{"goal without duration", "funding:\n  goal: \"100\"\n"},
		{"bad genesis", "ledger:\n  genesis:\n    \"0x0000000000000000000000000000000000000b01\": abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 1000000000000000000 ")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", amount.String())

	_, err = ParseAmount("0")
	assert.Error(t, err)
	_, err = ParseAmount("1.5")
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p", DBName: "x", Port: 5433, SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=x port=5433 sslmode=disable", d.DSN())
}
