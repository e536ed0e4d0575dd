// Package service — клиент MT5-моста: REST для баров/ордеров/позиций,
// WebSocket для живых тиков. Мост — тонкая прослойка над терминалом,
// клиент ничего не интерпретирует, только возит данные.
package service

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
)

type Client struct {
	cfg      config.BridgeConfig
	http     *http.Client
	wsDialer *websocket.Dialer

	mu         sync.RWMutex
	lastTick   models.Tick
	lastTickAt time.Time
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Bridge.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:      cfg.Bridge,
		http:     &http.Client{Timeout: timeout},
		wsDialer: &websocket.Dialer{},
	}
}

// cacheTick обновляется WS-стримером; Tick() отдаёт кэш, пока он свежий.
func (c *Client) cacheTick(t models.Tick) {
	c.mu.Lock()
	c.lastTick = t
	c.lastTickAt = time.Now()
	c.mu.Unlock()
}

func (c *Client) cachedTick(maxAge time.Duration) (models.Tick, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastTickAt.IsZero() || time.Since(c.lastTickAt) > maxAge {
		return models.Tick{}, false
	}
	return c.lastTick, true
}
