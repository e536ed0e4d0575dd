package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
)

var goldSpec = models.SymbolSpec{
	Name: "XAUUSD", Point: 0.01, Digits: 2, TickValue: 1,
	VolumeMin: 0.01, VolumeStep: 0.01, VolumeMax: 100,
}

var account = models.Account{Balance: 10000, Equity: 10000}

func calculator(mode models.TPSLMode) *Calculator {
	cfg := &config.Config{}
	cfg.Risk.RiskPercent = 0.5
	cfg.Targets = config.TargetsConfig{
		Mode:         mode,
		MinSLPoints:  100,
		RiskMultiple: 1.5,
		SLPoints:     100,
		TPPoints:     150,
		SLPips:       10,
		TPPips:       15,
		SLPercent:    0.5,
		TPPercent:    1.0,
	}
	return NewCalculator(cfg)
}

func buySignal(atrPts float64) models.Signal {
	return models.Signal{Symbol: "XAUUSD", Side: models.SideBuy, ATRPoints: atrPts}
}

func sellSignal(atrPts float64) models.Signal {
	return models.Signal{Symbol: "XAUUSD", Side: models.SideSell, ATRPoints: atrPts}
}

func TestPointsModeBuy(t *testing.T) {
	c := calculator(models.ModePoints)

	got, err := c.Calc(buySignal(0), 2000.00, goldSpec, account)
	require.NoError(t, err)

	assert.InDelta(t, 1999.00, got.SL, 1e-9)
	assert.InDelta(t, 2001.50, got.TP, 1e-9)
	assert.InDelta(t, 100, got.SLPoints, 1e-6)
	assert.InDelta(t, 150, got.TPPoints, 1e-6)
	assert.False(t, got.Adjusted)

	// риск 50 USD на 100 пунктов по 1 USD за пункт
	assert.InDelta(t, 0.5, got.Lot, 1e-9)
}

func TestPointsModeSellMirrors(t *testing.T) {
	c := calculator(models.ModePoints)

	got, err := c.Calc(sellSignal(0), 2000.00, goldSpec, account)
	require.NoError(t, err)
	assert.InDelta(t, 2001.00, got.SL, 1e-9)
	assert.InDelta(t, 1998.50, got.TP, 1e-9)
	assert.Greater(t, got.SL, 2000.00)
	assert.Less(t, got.TP, 2000.00)
}

func TestATRModeClampsToMinSL(t *testing.T) {
	c := calculator(models.ModeATR)

	// ATR 50 пунктов ниже минимума 100: берём минимум
	got, err := c.Calc(buySignal(50), 2000.00, goldSpec, account)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.SLPoints, 1e-6)
	assert.InDelta(t, 150, got.TPPoints, 1e-6, "tp = sl * risk_multiple")

	// ATR выше минимума: берём ATR
	got, err = c.Calc(buySignal(220), 2000.00, goldSpec, account)
	require.NoError(t, err)
	assert.InDelta(t, 220, got.SLPoints, 1e-6)
	assert.InDelta(t, 330, got.TPPoints, 1e-6)
}

func TestPipsModeUsesBrokerDigits(t *testing.T) {
	c := calculator(models.ModePips)

	fx := models.SymbolSpec{
		Name: "EURUSD", Point: 0.00001, Digits: 5, TickValue: 1,
		VolumeMin: 0.01, VolumeStep: 0.01, VolumeMax: 100,
	}
	got, err := c.Calc(buySignal(0), 1.10000, fx, account)
	require.NoError(t, err)

	// 10 пипсов на 5-значных котировках = 100 пунктов
	assert.InDelta(t, 100, got.SLPoints, 1e-6)
	assert.InDelta(t, 150, got.TPPoints, 1e-6)
	assert.InDelta(t, 1.09900, got.SL, 1e-9)
}

func TestBalancePercentMode(t *testing.T) {
	c := calculator(models.ModeBalancePct)

	got, err := c.Calc(buySignal(0), 2000.00, goldSpec, account)
	require.NoError(t, err)

	// 0.5% от 10000 = 50 USD; tick_value 1 → 50 пунктов
	assert.InDelta(t, 50, got.SLPoints, 1e-6)
	assert.InDelta(t, 100, got.TPPoints, 1e-6)
	assert.InDelta(t, 1999.50, got.SL, 1e-9)
	assert.InDelta(t, 2001.00, got.TP, 1e-9)
}

func TestStopsWidenedToBrokerMinimum(t *testing.T) {
	c := calculator(models.ModePoints)

	spec := goldSpec
	spec.StopsLevel = 150

	got, err := c.Calc(buySignal(0), 2000.00, spec, account)
	require.NoError(t, err)
	assert.True(t, got.Adjusted)
	assert.InDelta(t, 150, got.MinStopPoints, 1e-9)
	assert.InDelta(t, 1998.50, got.SL, 1e-9, "sl расширен с 100 до 150 пунктов")
	assert.InDelta(t, 150, got.SLPoints, 1e-6)
}

func TestLotClampedToVolumeLimits(t *testing.T) {
	c := calculator(models.ModePoints)

	// крошечный счёт: сырой лот ниже минимального объёма
	small := models.Account{Balance: 10, Equity: 10}
	got, err := c.Calc(buySignal(0), 2000.00, goldSpec, small)
	require.NoError(t, err)
	assert.InDelta(t, goldSpec.VolumeMin, got.Lot, 1e-9)

	// огромный счёт: лот зажат максимумом
	big := models.Account{Balance: 100_000_000, Equity: 100_000_000}
	got, err = c.Calc(buySignal(0), 2000.00, goldSpec, big)
	require.NoError(t, err)
	assert.InDelta(t, goldSpec.VolumeMax, got.Lot, 1e-9)
}

func TestLotFlooredToStep(t *testing.T) {
	c := calculator(models.ModePoints)

	// сырой лот 0.559: вниз к шагу 0.01, а не к ближайшему 0.56
	acct := models.Account{Balance: 11180, Equity: 11180}
	got, err := c.Calc(buySignal(0), 2000.00, goldSpec, acct)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, got.Lot, 1e-9)
}

func TestCalcRejectsBadInput(t *testing.T) {
	c := calculator(models.ModePoints)

	_, err := c.Calc(buySignal(0), 0, goldSpec, account)
	assert.Error(t, err)

	bad := goldSpec
	bad.Point = 0
	_, err = c.Calc(buySignal(0), 2000, bad, account)
	assert.Error(t, err)

	unknown := calculator("Fibonacci")
	_, err = unknown.Calc(buySignal(0), 2000, goldSpec, account)
	assert.Error(t, err)
}

func TestCalcIsPure(t *testing.T) {
	c := calculator(models.ModeATR)

	a, err := c.Calc(buySignal(150), 2000.00, goldSpec, account)
	require.NoError(t, err)
	b, err := c.Calc(buySignal(150), 2000.00, goldSpec, account)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
