package models

import "time"

// Position принадлежит шлюзу; здесь только read-only зеркало.
type Position struct {
	Ticket  int64
	Symbol  string
	Side    Side
	Volume  float64
	Entry   float64
	SL      float64
	TP      float64
	Profit  float64
	Updated time.Time
}
