package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"scalper_bot/pkg/logger"
)

// StreamTicks держит WebSocket к мосту и греет тик-кэш.
// Реконнект бесконечный с паузой в секунду; пустой WSURL — стрим выключен,
// Tick() работает чисто по REST.
func (c *Client) StreamTicks(ctx context.Context, symbol string) {
	if c.cfg.WSURL == "" {
		logger.Info("[WS] tick stream disabled, REST polling only")
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			logger.Info("[WS] connect %s", c.cfg.WSURL)
			conn, _, err := c.wsDialer.DialContext(ctx, c.cfg.WSURL, nil)
			if err != nil {
				logger.Warn("[WS] dial error: %v", err)
				time.Sleep(time.Second)
				continue
			}

			sub := map[string]any{"op": "subscribe", "symbol": symbol}
			if err := conn.WriteJSON(sub); err != nil {
				logger.Warn("[WS] subscribe error: %v", err)
				_ = conn.Close()
				continue
			}

			// keepalive ping каждые 20s — мост рвёт молчащие соединения
			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]string{"op": "ping"})
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Warn("[WS] read error: %v", err)
					close(stopPing)
					_ = conn.Close()
					break
				}

				var frame struct {
					Symbol string  `json:"symbol"`
					Bid    float64 `json:"bid"`
					Ask    float64 `json:"ask"`
					TimeMs int64   `json:"time_msc"`
				}
				if err := sonic.Unmarshal(msg, &frame); err != nil {
					continue
				}
				if frame.Symbol != symbol || frame.Bid <= 0 || frame.Ask <= 0 {
					continue
				}

				c.cacheTick(tickDTO{Bid: frame.Bid, Ask: frame.Ask, Time: frame.TimeMs}.toModel())
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(time.Second)
			}
		}
	}()
}
