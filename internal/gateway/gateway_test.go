package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scalper_bot/internal/models"
)

func TestValidateSpec(t *testing.T) {
	good := models.SymbolSpec{
		Name: "XAUUSD", Point: 0.01, Digits: 2, TickValue: 1,
		VolumeMin: 0.01, VolumeStep: 0.01, VolumeMax: 100,
	}
	assert.NoError(t, ValidateSpec(good))

	cases := map[string]func(*models.SymbolSpec){
		"empty name":     func(s *models.SymbolSpec) { s.Name = "" },
		"zero point":     func(s *models.SymbolSpec) { s.Point = 0 },
		"bad digits":     func(s *models.SymbolSpec) { s.Digits = 12 },
		"zero tick":      func(s *models.SymbolSpec) { s.TickValue = 0 },
		"zero vol min":   func(s *models.SymbolSpec) { s.VolumeMin = 0 },
		"max below min":  func(s *models.SymbolSpec) { s.VolumeMax = 0.001 },
	}
	for name, mutate := range cases {
		spec := good
		mutate(&spec)
		assert.ErrorIs(t, ValidateSpec(spec), ErrInvalidSymbolSpec, name)
	}
}
