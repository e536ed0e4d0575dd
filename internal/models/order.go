package models

// FillPolicy — политика исполнения рыночного ордера.
type FillPolicy string

const (
	FillIOC FillPolicy = "IOC" // immediate-or-cancel, основная попытка
	FillFOK FillPolicy = "FOK" // fill-or-kill, единственный fallback
)

// TPSLMode — способ расчёта стопов.
type TPSLMode string

const (
	ModeATR        TPSLMode = "ATR"
	ModePoints     TPSLMode = "Points"
	ModePips       TPSLMode = "Pips"
	ModeBalancePct TPSLMode = "Balance%"
)

// Retcode — коды результата шлюза (подмножество retcode MT5).
type Retcode int

const (
	RetcodeDone         Retcode = 10009
	RetcodeRequote      Retcode = 10004
	RetcodePriceOff     Retcode = 10015
	RetcodeInvalidFill  Retcode = 10030
	RetcodeNoMoney      Retcode = 10019
	RetcodeMarketClosed Retcode = 10018
	RetcodeRejected     Retcode = 10006
)

// Retryable — true для отказов, после которых разрешён один повтор
// с fallback-политикой заполнения по свежей цене.
func (r Retcode) Retryable() bool {
	switch r {
	case RetcodeRequote, RetcodePriceOff, RetcodeInvalidFill:
		return true
	}
	return false
}

// OrderRequest строится на каждый принятый сигнал.
type OrderRequest struct {
	Symbol    string
	Side      Side
	Lot       float64
	Price     float64
	SL        float64
	TP        float64
	Deviation int // допустимое отклонение цены, пункты
	Fill      FillPolicy
	Mode      TPSLMode
	Comment   string
}

// OrderResult — терминальный итог одной отправки.
type OrderResult struct {
	Ticket      int64
	Retcode     Retcode
	FilledPrice float64
	Comment     string
}

// OK — сделка исполнена.
func (r OrderResult) OK() bool { return r.Retcode == RetcodeDone }

// SymbolSpec — спецификация инструмента, снятая со шлюза при старте.
type SymbolSpec struct {
	Name         string
	Point        float64
	Digits       int
	ContractSize float64
	TickValue    float64
	VolumeMin    float64
	VolumeStep   float64
	VolumeMax    float64
	StopsLevel   int // минимальная дистанция SL/TP в пунктах
	FreezeLevel  int
}

// PipMultiplier — пункты на один пип по конвенции брокера.
func (s SymbolSpec) PipMultiplier() float64 {
	if s.Digits == 3 || s.Digits == 5 {
		return 10
	}
	return 1
}

// Account — снимок счёта.
type Account struct {
	Login   int64
	Balance float64
	Equity  float64
}
