package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"scalper_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config — вся конфигурация сессии. Иммутабельна после NewConfig:
// компоненты получают её в конструкторе и никогда не меняют.
type Config struct {
	Symbol string `yaml:"symbol"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	DB string `yaml:"db_dsn"`

	Service struct {
		HealthAddr string `yaml:"health_addr"` // например ":8080"
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Bridge   BridgeConfig   `yaml:"bridge"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Targets  TargetsConfig  `yaml:"targets"`
	Exec     ExecConfig     `yaml:"exec"`
	Feed     FeedConfig     `yaml:"feed"`
}

// BridgeConfig — подключение к MT5-мосту.
type BridgeConfig struct {
	BaseURL string        `yaml:"base_url"` // REST: bars/tick/order/positions/account
	WSURL   string        `yaml:"ws_url"`   // стрим тиков
	Timeout time.Duration `yaml:"timeout"`
}

// StrategyConfig — параметры двух-таймфреймовой стратегии pullback-continuation.
type StrategyConfig struct {
	EMAFast   int `yaml:"ema_fast"`
	EMAMid    int `yaml:"ema_mid"`
	EMASlow   int `yaml:"ema_slow"`
	RSIPeriod int `yaml:"rsi_period"`
	ATRPeriod int `yaml:"atr_period"`

	MaxSpreadPoints  float64 `yaml:"max_spread_points"`
	MinBodyRatio     float64 `yaml:"min_body_ratio"`    // анти-доджи, 0.30
	PullbackATRRatio float64 `yaml:"pullback_atr_ratio"` // 0.5

	UseRSIFilter   bool `yaml:"use_rsi_filter"`
	RSIRecrossBars int  `yaml:"rsi_recross_bars"`

	// Торговые окна UTC в формате "08:00-17:00". Пусто — торгуем всегда.
	Sessions []string `yaml:"sessions"`

	BarsWindow int `yaml:"bars_window"` // сколько закрытых свечей тянуть с моста
}

// RiskConfig — дневные лимиты и кулдаун.
type RiskConfig struct {
	RiskPercent          float64       `yaml:"risk_percent"`
	MaxDailyLossPct      float64       `yaml:"max_daily_loss_pct"`
	MaxTradesPerDay      int           `yaml:"max_trades_per_day"`
	MaxConsecutiveLosses int           `yaml:"max_consecutive_losses"`
	Cooldown             time.Duration `yaml:"cooldown"`
}

// TargetsConfig — расчёт SL/TP по одному из четырёх режимов.
type TargetsConfig struct {
	Mode models.TPSLMode `yaml:"mode"` // ATR | Points | Pips | Balance%

	MinSLPoints  float64 `yaml:"min_sl_points"`
	RiskMultiple float64 `yaml:"risk_multiple"`

	SLPoints float64 `yaml:"sl_points"`
	TPPoints float64 `yaml:"tp_points"`

	SLPips float64 `yaml:"sl_pips"`
	TPPips float64 `yaml:"tp_pips"`

	SLPercent float64 `yaml:"sl_percent"`
	TPPercent float64 `yaml:"tp_percent"`
}

// ExecConfig — исполнение.
type ExecConfig struct {
	DeviationPoints  int  `yaml:"deviation_points"`
	DynamicDeviation bool `yaml:"dynamic_deviation"` // расширять deviation на спред
	Shadow           bool `yaml:"shadow"`            // оценивать, но не отправлять
}

// FeedConfig — каденс воркера.
type FeedConfig struct {
	TickEvery      time.Duration `yaml:"tick_every"`
	RefreshEvery   time.Duration `yaml:"refresh_every"`
	HeartbeatEvery time.Duration `yaml:"heartbeat_every"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	config := Config{
		Symbol: "XAUUSD",
		Strategy: StrategyConfig{
			EMAFast:          intFromEnv("EMA_FAST", 9),
			EMAMid:           intFromEnv("EMA_MID", 21),
			EMASlow:          intFromEnv("EMA_SLOW", 50),
			RSIPeriod:        intFromEnv("RSI_PERIOD", 14),
			ATRPeriod:        intFromEnv("ATR_PERIOD", 14),
			MaxSpreadPoints:  floatFromEnv("MAX_SPREAD_POINTS", 50),
			MinBodyRatio:     0.30,
			PullbackATRRatio: 0.5,
			UseRSIFilter:     boolFromEnv("USE_RSI_FILTER", false),
			RSIRecrossBars:   intFromEnv("RSI_RECROSS_BARS", 3),
			Sessions:         []string{"08:00-17:00", "13:00-22:00"},
			BarsWindow:       intFromEnv("BARS_WINDOW", 200),
		},
		Risk: RiskConfig{
			RiskPercent:          floatFromEnv("RISK_PERCENT", 0.5),
			MaxDailyLossPct:      floatFromEnv("MAX_DAILY_LOSS_PCT", 2.0),
			MaxTradesPerDay:      intFromEnv("MAX_TRADES_PER_DAY", 10),
			MaxConsecutiveLosses: intFromEnv("MAX_CONSECUTIVE_LOSSES", 3),
			Cooldown:             durationFromEnv("LOSS_COOLDOWN", "30m"),
		},
		Targets: TargetsConfig{
			Mode:         models.ModeATR,
			MinSLPoints:  floatFromEnv("MIN_SL_POINTS", 100),
			RiskMultiple: floatFromEnv("RISK_MULTIPLE", 1.5),
			SLPoints:     100,
			TPPoints:     150,
			SLPips:       10,
			TPPips:       15,
			SLPercent:    0.5,
			TPPercent:    1.0,
		},
		Exec: ExecConfig{
			DeviationPoints:  intFromEnv("DEVIATION_POINTS", 20),
			DynamicDeviation: true,
			Shadow:           boolFromEnv("SHADOW_MODE", true),
		},
		Feed: FeedConfig{
			TickEvery:      durationFromEnv("TICK_EVERY", "250ms"),
			RefreshEvery:   durationFromEnv("REFRESH_EVERY", "1s"),
			HeartbeatEvery: durationFromEnv("HEARTBEAT_EVERY", "1s"),
		},
		Bridge: BridgeConfig{
			Timeout: durationFromEnv("BRIDGE_TIMEOUT", "5s"),
		},
	}

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err == nil {
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	if v := os.Getenv("SYMBOL"); v != "" {
		config.Symbol = v
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("BRIDGE_BASE_URL"); v != "" {
		config.Bridge.BaseURL = v
	}
	if v := os.Getenv("BRIDGE_WS_URL"); v != "" {
		config.Bridge.WSURL = v
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate — фатальные проверки старта. Дальше конфиг считается корректным.
func (c *Config) Validate() error {
	switch c.Targets.Mode {
	case models.ModeATR, models.ModePoints, models.ModePips, models.ModeBalancePct:
	default:
		return fmt.Errorf("invalid tp/sl mode %q", c.Targets.Mode)
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 10 {
		return fmt.Errorf("risk_percent must be in (0, 10], got %v", c.Risk.RiskPercent)
	}
	if c.Strategy.MaxSpreadPoints <= 0 {
		return fmt.Errorf("max_spread_points must be positive")
	}
	if c.Strategy.EMAFast >= c.Strategy.EMAMid || c.Strategy.EMAMid >= c.Strategy.EMASlow {
		return fmt.Errorf("ema periods must be fast < mid < slow")
	}
	for _, s := range c.Strategy.Sessions {
		if _, err := ParseWindow(s); err != nil {
			return fmt.Errorf("session window %q: %w", s, err)
		}
	}
	return nil
}

// Window — торговое окно в минутах от полуночи UTC. Окна через полночь
// (start > end) допустимы.
type Window struct {
	Start int
	End   int
}

// Contains — момент попадает в окно.
func (w Window) Contains(t time.Time) bool {
	m := t.UTC().Hour()*60 + t.UTC().Minute()
	if w.Start <= w.End {
		return m >= w.Start && m <= w.End
	}
	return m >= w.Start || m <= w.End
}

// ParseWindow разбирает "08:00-17:00".
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("want HH:MM-HH:MM")
	}
	start, err := parseMinutes(parts[0])
	if err != nil {
		return Window{}, err
	}
	end, err := parseMinutes(parts[1])
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// Windows возвращает разобранные торговые окна.
func (c *StrategyConfig) Windows() []Window {
	out := make([]Window, 0, len(c.Sessions))
	for _, s := range c.Sessions {
		w, err := ParseWindow(s)
		if err != nil {
			continue // отфильтровано в Validate
		}
		out = append(out, w)
	}
	return out
}

func parseMinutes(s string) (int, error) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("want HH:MM")
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range")
	}
	return h*60 + m, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := def
	if v := os.Getenv(key); v != "" {
		val = v
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
