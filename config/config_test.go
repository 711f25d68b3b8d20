package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(5), cfg.FeePercent)
	assert.Equal(t, "240h0m0s", cfg.TicketValidity.String())
	assert.NoError(t, cfg.Validate())
}

func TestProcess_Overrides(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("MARKET_FEE_PERCENT", "7")
	t.Setenv("DB_HOST", "db")

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))

	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, int64(7), cfg.FeePercent)
	assert.Contains(t, cfg.DSN(), "host=db")
}

func TestValidate(t *testing.T) {
	base := Config{Store: "postgres", FeePercent: 5, CustodyAddress: "market", GatewayAddress: "gateway"}

	bad := base
	bad.Store = "sqlite"
	assert.Error(t, bad.Validate())

	bad = base
	bad.FeePercent = 101
	assert.Error(t, bad.Validate())

	bad = base
	bad.GatewayAddress = "market"
	assert.Error(t, bad.Validate())
}
