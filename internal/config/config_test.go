package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

func TestGstConfigPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GstConfig
		mode    enum.GstMode
		rate    string
		wantErr bool
	}{
		{"additive", GstConfig{Mode: "additive", Rate: "8"}, enum.GstModeAdditive, "8", false},
		{"inclusive fractional", GstConfig{Mode: "inclusive", Rate: "12.5"}, enum.GstModeInclusive, "12.5", false},
		{"empty mode is additive", GstConfig{Rate: "10"}, enum.GstModeAdditive, "10", false},
		{"unknown mode", GstConfig{Mode: "flat", Rate: "8"}, 0, "", true},
		{"bad rate", GstConfig{Mode: "additive", Rate: "eight"}, 0, "", true},
		{"negative rate", GstConfig{Mode: "additive", Rate: "-1"}, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := tt.cfg.Policy()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, policy.Mode())
			assert.Equal(t, tt.rate, policy.GstRate().String())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Memory")

	cfg := Load()

	assert.True(t, cfg.Database.IsMemory())
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.True(t, cfg.Checkout.AllowNegativeTotals)
	assert.Equal(t, "8", cfg.Checkout.BillGST.Rate)
	assert.Equal(t, "inclusive", cfg.Checkout.LedgerGST.Mode)
	assert.Equal(t, 1, cfg.Checkout.DefaultCreditDays)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
}
