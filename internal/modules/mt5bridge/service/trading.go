package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"

	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
)

type orderDTO struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Lot       float64 `json:"volume"`
	Price     float64 `json:"price"`
	SL        float64 `json:"sl"`
	TP        float64 `json:"tp"`
	Deviation int     `json:"deviation"`
	Fill      string  `json:"type_filling"`
	Comment   string  `json:"comment"`
}

type orderResultDTO struct {
	Retcode int     `json:"retcode"`
	Ticket  int64   `json:"order"`
	Price   float64 `json:"price"`
	Comment string  `json:"comment"`
}

func (c *Client) SubmitOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error) {
	dto := orderDTO{
		Symbol:    req.Symbol,
		Side:      string(req.Side),
		Lot:       req.Lot,
		Price:     req.Price,
		SL:        req.SL,
		TP:        req.TP,
		Deviation: req.Deviation,
		Fill:      string(req.Fill),
		Comment:   req.Comment,
	}

	var res orderResultDTO
	if err := c.doJSON(ctx, "POST", "/order", dto, &res); err != nil {
		return models.OrderResult{}, err
	}
	return models.OrderResult{
		Ticket:      res.Ticket,
		Retcode:     models.Retcode(res.Retcode),
		FilledPrice: res.Price,
		Comment:     res.Comment,
	}, nil
}

type positionDTO struct {
	Ticket  int64   `json:"ticket"`
	Symbol  string  `json:"symbol"`
	Side    string  `json:"type"` // BUY | SELL
	Volume  float64 `json:"volume"`
	Entry   float64 `json:"price_open"`
	SL      float64 `json:"sl"`
	TP      float64 `json:"tp"`
	Profit  float64 `json:"profit"`
	Updated int64   `json:"time_update"`
}

func (c *Client) Positions(ctx context.Context, symbol string) ([]models.Position, error) {
	var dto []positionDTO
	if err := c.doJSON(ctx, "GET", "/positions?symbol="+url.QueryEscape(symbol), nil, &dto); err != nil {
		return nil, err
	}

	out := make([]models.Position, 0, len(dto))
	for _, p := range dto {
		out = append(out, models.Position{
			Ticket:  p.Ticket,
			Symbol:  p.Symbol,
			Side:    models.Side(p.Side),
			Volume:  p.Volume,
			Entry:   p.Entry,
			SL:      p.SL,
			TP:      p.TP,
			Profit:  p.Profit,
			Updated: time.Unix(p.Updated, 0).UTC(),
		})
	}
	return out, nil
}

func (c *Client) ClosePosition(ctx context.Context, ticket int64) error {
	var res orderResultDTO
	path := fmt.Sprintf("/positions/%d/close", ticket)
	if err := c.doJSON(ctx, "POST", path, nil, &res); err != nil {
		return err
	}
	switch models.Retcode(res.Retcode) {
	case models.RetcodeDone:
		return nil
	case models.RetcodeRejected:
		return pkgerrors.Wrapf(gateway.ErrPositionNotFound, "ticket %d: %s", ticket, res.Comment)
	default:
		return pkgerrors.Errorf("close ticket %d: retcode=%d %s", ticket, res.Retcode, res.Comment)
	}
}
