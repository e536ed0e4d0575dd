package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scalper_bot/internal/executor"
	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
	"scalper_bot/internal/risk"
	"scalper_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram — нотифайер + операторские команды. Команды принимаются
// только из настроенного чата, всё остальное игнорируется.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	symbol string

	gw     gateway.Gateway
	rm     *risk.Manager
	exec   *executor.Coordinator
	events chan<- models.Event
}

func NewTelegram(token string, chatID int64, symbol string, gw gateway.Gateway, rm *risk.Manager, exec *executor.Coordinator, events chan<- models.Event) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
		symbol: symbol,
		gw:     gw,
		rm:     rm,
		exec:   exec,
		events: events,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// /positions — снимок открытых позиций со шлюза
func (t *Telegram) handlePositions(ctx context.Context) {
	positions, err := t.gw.Positions(ctx, t.symbol)
	if err != nil {
		t.Sendf("❗️ Ошибка получения позиций: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send("📭 Открытых позиций нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- #%d %s %s vol=%.2f @ %.5f sl=%.5f tp=%.5f pnl=%.2f\n",
			p.Ticket, p.Symbol, p.Side, p.Volume, p.Entry, p.SL, p.TP, p.Profit)
	}
	t.Send(b.String())
}

// /stopall — закрыть всё и встать. Необратимо до /resume.
// Итог идёт событием через общий канал: диспетчер журналирует его и
// отправляет сводку оператору.
func (t *Telegram) handleStopAll(ctx context.Context) {
	t.Send("🛑 Аварийная остановка: закрываю все позиции...")
	t.emit(t.rm.EmergencyStop(ctx, t.gw, t.symbol))
}

func (t *Telegram) emit(e models.Event) {
	select {
	case t.events <- e:
	default:
		logger.Warn("[EVENTS] channel full, drop %s", e.EventKind())
	}
}

func (t *Telegram) handleStatus() {
	s := t.rm.Snapshot()
	mode := "LIVE"
	if t.exec.Shadow() {
		mode = "SHADOW"
	}
	halted := "нет"
	if s.TradingHalted {
		halted = "да"
	}
	t.Sendf("ℹ️ %s | режим=%s | сделок сегодня=%d | PnL=%.2f | серия убытков=%d | halt=%s",
		t.symbol, mode, s.DailyTrades, s.DailyPnL, s.ConsecutiveLosses, halted)
}

// Start — long-polling, только команды из нашего чата.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				msg := upd.Message
				if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID || !msg.IsCommand() {
					continue
				}
				switch msg.Command() {
				case "positions":
					go t.handlePositions(ctx)
				case "stopall":
					go t.handleStopAll(ctx)
				case "halt":
					t.rm.Halt()
					t.Send("⛔️ Торговля остановлена оператором")
				case "resume":
					t.rm.Resume()
					t.Send("▶️ Торговля возобновлена")
				case "shadow":
					on := strings.TrimSpace(msg.CommandArguments()) == "on"
					t.exec.SetShadow(on)
					if on {
						t.Send("👻 Shadow-режим включён: ордера не отправляются")
					} else {
						t.Send("🔴 Shadow-режим выключен: торгуем вживую")
					}
				case "status":
					t.handleStatus()
				}
			}
		}
	}()
	logger.Info("[TELEGRAM] bot started, chat_id=%d", t.chatID)
}

func (t *Telegram) Stop() { t.bot.StopReceivingUpdates() }

// Stdout — заглушка, когда телеграм не настроен.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }

// throttle — не чаще одного сообщения данного класса в окно.
type throttle struct {
	last map[string]time.Time
	win  time.Duration
}

func newThrottle(win time.Duration) *throttle {
	return &throttle{last: make(map[string]time.Time), win: win}
}

func (t *throttle) allow(key string, now time.Time) bool {
	if prev, ok := t.last[key]; ok && now.Sub(prev) < t.win {
		return false
	}
	t.last[key] = now
	return true
}
