package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("08:00-17:00")
	require.NoError(t, err)
	assert.Equal(t, 8*60, w.Start)
	assert.Equal(t, 17*60, w.End)

	_, err = ParseWindow("8-17")
	assert.Error(t, err)
	_, err = ParseWindow("25:00-17:00")
	assert.Error(t, err)
	_, err = ParseWindow("08:00")
	assert.Error(t, err)
}

func TestWindowContains(t *testing.T) {
	w, err := ParseWindow("08:00-17:00")
	require.NoError(t, err)

	at := func(h, m int) time.Time {
		return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
	}
	assert.True(t, w.Contains(at(8, 0)))
	assert.True(t, w.Contains(at(12, 30)))
	assert.True(t, w.Contains(at(17, 0)))
	assert.False(t, w.Contains(at(7, 59)))
	assert.False(t, w.Contains(at(17, 1)))
}

func TestWindowAcrossMidnight(t *testing.T) {
	w, err := ParseWindow("22:00-02:00")
	require.NoError(t, err)

	at := func(h, m int) time.Time {
		return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
	}
	assert.True(t, w.Contains(at(23, 30)))
	assert.True(t, w.Contains(at(1, 0)))
	assert.False(t, w.Contains(at(12, 0)))
}

func validConfig() *Config {
	c := &Config{Symbol: "XAUUSD"}
	c.Strategy = StrategyConfig{
		EMAFast: 9, EMAMid: 21, EMASlow: 50,
		MaxSpreadPoints: 50,
		Sessions:        []string{"08:00-17:00"},
	}
	c.Risk = RiskConfig{RiskPercent: 0.5}
	c.Targets = TargetsConfig{Mode: models.ModeATR}
	return c
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadMode(t *testing.T) {
	c := validConfig()
	c.Targets.Mode = "Fibonacci"
	assert.Error(t, c.Validate())
}

func TestValidateRejectsBadRisk(t *testing.T) {
	c := validConfig()
	c.Risk.RiskPercent = 0
	assert.Error(t, c.Validate())

	c.Risk.RiskPercent = 15
	assert.Error(t, c.Validate())
}

func TestValidateRejectsEMAOrder(t *testing.T) {
	c := validConfig()
	c.Strategy.EMAMid = 9
	assert.Error(t, c.Validate())
}

func TestValidateRejectsBadSession(t *testing.T) {
	c := validConfig()
	c.Strategy.Sessions = []string{"вторник"}
	assert.Error(t, c.Validate())
}
