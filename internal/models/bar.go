package models

import "time"

// Timeframe идентифицирует период свечи в терминах MT5.
type Timeframe string

const (
	TimeframeM1 Timeframe = "M1"
	TimeframeM5 Timeframe = "M5"
)

// Bar — закрытая свеча. Feed никогда не отдаёт формирующийся бар.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

// Body возвращает модуль тела свечи.
func (b Bar) Body() float64 {
	d := b.Close - b.Open
	if d < 0 {
		return -d
	}
	return d
}

// Range возвращает полный ход свечи high-low.
func (b Bar) Range() float64 { return b.High - b.Low }

// Tick — текущие bid/ask по инструменту.
type Tick struct {
	Bid  float64
	Ask  float64
	Time time.Time
}

// SpreadPoints переводит спред в пункты по point инструмента.
func (t Tick) SpreadPoints(point float64) float64 {
	if point <= 0 {
		return 0
	}
	return (t.Ask - t.Bid) / point
}
