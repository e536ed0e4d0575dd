package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundToTick(t *testing.T) {
	assert.InDelta(t, 1999.00, RoundDownToTick(1999.004, 0.01), 1e-9)
	assert.InDelta(t, 1999.01, RoundUpToTick(1999.004, 0.01), 1e-9)

	// точное значение не двигается ни в одну сторону
	assert.InDelta(t, 2000.35, RoundDownToTick(2000.35, 0.01), 1e-9)
	assert.InDelta(t, 2000.35, RoundUpToTick(2000.35, 0.01), 1e-9)

	// нулевой тик — цена как есть
	assert.InDelta(t, 1234.5678, RoundDownToTick(1234.5678, 0), 1e-9)
}

func TestBarSlot(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 34, 0, 0, time.UTC), BarSlot(at, time.Minute))
	assert.Equal(t, time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC), BarSlot(at, 5*time.Minute))
	assert.Equal(t, at, BarSlot(at, 0))
}
