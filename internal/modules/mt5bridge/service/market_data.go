package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"scalper_bot/internal/models"
)

// barDTO — свеча в формате моста: времена в unix-секундах (UTC).
type barDTO struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"tick_volume"`
}

type tickDTO struct {
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
	Time int64   `json:"time_msc"` // unix ms
}

func (d tickDTO) toModel() models.Tick {
	return models.Tick{
		Bid:  d.Bid,
		Ask:  d.Ask,
		Time: time.UnixMilli(d.Time).UTC(),
	}
}

// Bars тянет count последних закрытых свечей, свежая последняя.
func (c *Client) Bars(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Bar, error) {
	path := fmt.Sprintf("/bars?symbol=%s&timeframe=%s&count=%d",
		url.QueryEscape(symbol), url.QueryEscape(string(tf)), count)

	var dto []barDTO
	if err := c.doJSON(ctx, "GET", path, nil, &dto); err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(dto))
	for _, b := range dto {
		bars = append(bars, models.Bar{
			Time:   time.Unix(b.Time, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return bars, nil
}

// Tick отдаёт свежий тик из WS-кэша; при протухании кэша — REST.
func (c *Client) Tick(ctx context.Context, symbol string) (models.Tick, error) {
	if t, ok := c.cachedTick(2 * time.Second); ok {
		return t, nil
	}

	var dto tickDTO
	if err := c.doJSON(ctx, "GET", "/tick?symbol="+url.QueryEscape(symbol), nil, &dto); err != nil {
		return models.Tick{}, err
	}
	t := dto.toModel()
	c.cacheTick(t)
	return t, nil
}
