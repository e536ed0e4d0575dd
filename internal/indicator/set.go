package indicator

import "scalper_bot/internal/models"

// Periods — периоды всех серий одного таймфрейма.
type Periods struct {
	EMAFast int
	EMAMid  int
	EMASlow int
	RSI     int
	ATR     int
}

// Set — серии индикаторов, выровненные по индексу со свечами окна.
type Set struct {
	Bars    []models.Bar
	EMAFast []float64
	EMAMid  []float64
	EMASlow []float64
	RSI     []float64
	ATR     []float64
}

// Compute пересчитывает все серии с нуля по текущему окну. Стратегия не может
// оцениваться, пока хотя бы одна серия не прогрета на последнем баре.
func Compute(bars []models.Bar, p Periods) (*Set, error) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	s := &Set{Bars: bars}
	var err error
	if s.EMAFast, err = EMA(closes, p.EMAFast); err != nil {
		return nil, err
	}
	if s.EMAMid, err = EMA(closes, p.EMAMid); err != nil {
		return nil, err
	}
	if s.EMASlow, err = EMA(closes, p.EMASlow); err != nil {
		return nil, err
	}
	if s.RSI, err = RSI(closes, p.RSI); err != nil {
		return nil, err
	}
	if s.ATR, err = ATR(bars, p.ATR); err != nil {
		return nil, err
	}
	return s, nil
}

// Ready — на последнем баре определены все серии.
func (s *Set) Ready() bool {
	n := len(s.Bars)
	if n == 0 {
		return false
	}
	i := n - 1
	return Defined(s.EMAFast[i]) && Defined(s.EMAMid[i]) && Defined(s.EMASlow[i]) &&
		Defined(s.RSI[i]) && Defined(s.ATR[i])
}

// Last — последняя свеча окна.
func (s *Set) Last() models.Bar { return s.Bars[len(s.Bars)-1] }

// LastEMAFast и далее — значения серий на последнем баре.
func (s *Set) LastEMAFast() float64 { return s.EMAFast[len(s.EMAFast)-1] }
func (s *Set) LastEMAMid() float64  { return s.EMAMid[len(s.EMAMid)-1] }
func (s *Set) LastEMASlow() float64 { return s.EMASlow[len(s.EMASlow)-1] }
func (s *Set) LastRSI() float64     { return s.RSI[len(s.RSI)-1] }
func (s *Set) LastATR() float64     { return s.ATR[len(s.ATR)-1] }
