package models

import "time"

// Side как в раннере: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal — результат одного прохода SignalEvaluator.
// Ровно один Signal (возможно SideNone) на цикл.
type Signal struct {
	Symbol       string
	Side         Side
	Entry        float64 // ask для BUY, bid для SELL
	Reason       string  // "pullback_continuation" либо причина отказа
	ATRPoints    float64
	SpreadPoints float64
	CreatedAt    time.Time
}

// Actionable — true когда сигнал можно передавать дальше по конвейеру.
func (s Signal) Actionable() bool { return s.Side != SideNone }
