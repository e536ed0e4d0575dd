package helper

import (
	"math"
	"time"
)

// RoundDownToTick прижимает цену вниз к сетке тиков брокера.
// Эпсилон гасит двоичную погрешность на границе шага.
func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-9)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-9)
	return steps * tick
}

// BarSlot — начало бара, в который попадает t (UTC-слот по Unix-времени).
func BarSlot(t time.Time, tf time.Duration) time.Time {
	if tf <= 0 {
		return t
	}
	sec := t.Unix()
	step := int64(tf / time.Second)
	sec -= sec % step
	return time.Unix(sec, 0).UTC()
}
