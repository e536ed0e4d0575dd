// Package risk — pre-trade гейтинг и учёт дневных лимитов.
// Состояние живёт в пределах торгового дня: сбрасывается на смене даты
// либо явным операторским резетом, больше никогда.
package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
	"scalper_bot/pkg/logger"
)

// Причины RiskBlocked. Это ожидаемые решения, не ошибки.
const (
	BlockHalted       = "trading_halted"
	BlockMaxTrades    = "max_trades_reached"
	BlockDailyLoss    = "daily_loss_limit"
	BlockLossCooldown = "loss_cooldown"
)

// State — снимок для презентации; копия, не ссылка.
type State struct {
	DailyTrades       int
	DailyPnL          float64
	ConsecutiveLosses int
	TradingHalted     bool
	CooldownUntil     time.Time
}

type Manager struct {
	cfg config.RiskConfig

	mu            sync.Mutex
	day           time.Time // дата текущей сессии (UTC, до дня)
	startBalance  float64
	trades        int
	pnl           float64
	consecutive   int
	halted        bool
	cooldownUntil time.Time
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg.Risk}
}

// StartSession фиксирует стартовый баланс дня. Вызывается на старте
// и при смене даты.
func (m *Manager) StartSession(balance float64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(balance, now)
}

func (m *Manager) resetLocked(balance float64, now time.Time) {
	m.day = now.UTC().Truncate(24 * time.Hour)
	m.startBalance = balance
	m.trades = 0
	m.pnl = 0
	m.consecutive = 0
	m.halted = false
	m.cooldownUntil = time.Time{}
	logger.Info("[RISK] session reset, start balance=%.2f", balance)
}

// PreTrade — гейт перед любой отправкой. Пустая строка — торговать можно.
// Порядок фиксирован: halt -> дневной лимит сделок -> дневной убыток ->
// кулдаун. Дневной убыток дополнительно взводит липкий halt.
func (m *Manager) PreTrade(acct models.Account, now time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	// смена даты = новая сессия
	if d := now.UTC().Truncate(24 * time.Hour); !d.Equal(m.day) {
		m.resetLocked(acct.Balance, now)
	}

	if m.halted {
		return BlockHalted
	}
	if m.cfg.MaxTradesPerDay > 0 && m.trades >= m.cfg.MaxTradesPerDay {
		return BlockMaxTrades
	}
	if m.startBalance > 0 {
		lossPct := (m.startBalance - acct.Equity) / m.startBalance * 100
		if lossPct >= m.cfg.MaxDailyLossPct {
			m.halted = true // липко до конца сессии
			logger.Error("[RISK] daily loss %.2f%% >= %.2f%%, trading halted", lossPct, m.cfg.MaxDailyLossPct)
			return BlockDailyLoss
		}
	}
	if now.Before(m.cooldownUntil) {
		return BlockLossCooldown
	}
	return ""
}

// OnFill учитывает исполненный вход.
func (m *Manager) OnFill() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades++
}

// OnPositionClosed обновляет PnL и серию убытков. Серия за порогом
// взводит временный кулдаун — в отличие от дневного halt он истекает сам.
func (m *Manager) OnPositionClosed(profit float64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pnl += profit
	if profit < 0 {
		m.consecutive++
		if m.cfg.MaxConsecutiveLosses > 0 && m.consecutive >= m.cfg.MaxConsecutiveLosses {
			m.cooldownUntil = now.Add(m.cfg.Cooldown)
			logger.Error("[RISK] %d consecutive losses, cooldown until %s",
				m.consecutive, m.cooldownUntil.Format(time.TimeOnly))
		}
		return
	}
	m.consecutive = 0
}

// Halt — операторский стоп, липкий.
func (m *Manager) Halt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halted = true
}

// Resume — операторский овверайд липкого halt.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halted = false
	m.cooldownUntil = time.Time{}
}

func (m *Manager) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted
}

// Snapshot — копия состояния для презентации.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		DailyTrades:       m.trades,
		DailyPnL:          m.pnl,
		ConsecutiveLosses: m.consecutive,
		TradingHalted:     m.halted,
		CooldownUntil:     m.cooldownUntil,
	}
}

// EmergencyStop закрывает все открытые позиции через шлюз, best-effort:
// отказ по одной позиции не прячет результаты остальных. После прохода
// торговля останавливается намертво.
func (m *Manager) EmergencyStop(ctx context.Context, gw gateway.Gateway, symbol string) models.EmergencyStopDone {
	defer m.Halt()

	done := models.EmergencyStopDone{}
	positions, err := gw.Positions(ctx, symbol)
	if err != nil {
		done.Failures = append(done.Failures, fmt.Sprintf("list positions: %v", err))
		return done
	}
	for _, pos := range positions {
		if err := gw.ClosePosition(ctx, pos.Ticket); err != nil {
			done.Failures = append(done.Failures, fmt.Sprintf("ticket %d: %v", pos.Ticket, err))
			continue
		}
		done.Closed++
	}
	logger.Info("[RISK] emergency stop: closed=%d failures=%d", done.Closed, len(done.Failures))
	return done
}
