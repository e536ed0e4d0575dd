package service

import (
	"context"
	"net/url"

	"scalper_bot/internal/models"
)

type accountDTO struct {
	Login   int64   `json:"login"`
	Balance float64 `json:"balance"`
	Equity  float64 `json:"equity"`
}

func (c *Client) Account(ctx context.Context) (models.Account, error) {
	var dto accountDTO
	if err := c.doJSON(ctx, "GET", "/account", nil, &dto); err != nil {
		return models.Account{}, err
	}
	return models.Account{Login: dto.Login, Balance: dto.Balance, Equity: dto.Equity}, nil
}

type specDTO struct {
	Name         string  `json:"name"`
	Point        float64 `json:"point"`
	Digits       int     `json:"digits"`
	ContractSize float64 `json:"trade_contract_size"`
	TickValue    float64 `json:"trade_tick_value"`
	VolumeMin    float64 `json:"volume_min"`
	VolumeStep   float64 `json:"volume_step"`
	VolumeMax    float64 `json:"volume_max"`
	StopsLevel   int     `json:"trade_stops_level"`
	FreezeLevel  int     `json:"trade_freeze_level"`
}

func (c *Client) SymbolSpec(ctx context.Context, symbol string) (models.SymbolSpec, error) {
	var dto specDTO
	if err := c.doJSON(ctx, "GET", "/symbol?symbol="+url.QueryEscape(symbol), nil, &dto); err != nil {
		return models.SymbolSpec{}, err
	}
	return models.SymbolSpec{
		Name:         dto.Name,
		Point:        dto.Point,
		Digits:       dto.Digits,
		ContractSize: dto.ContractSize,
		TickValue:    dto.TickValue,
		VolumeMin:    dto.VolumeMin,
		VolumeStep:   dto.VolumeStep,
		VolumeMax:    dto.VolumeMax,
		StopsLevel:   dto.StopsLevel,
		FreezeLevel:  dto.FreezeLevel,
	}, nil
}
