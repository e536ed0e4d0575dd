package service

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	pkgerrors "github.com/pkg/errors"

	"scalper_bot/internal/gateway"
)

// doJSON — один REST-вызов моста. Сетевые ошибки и 5xx маппятся в
// gateway.ErrUnavailable, чтобы воркер пропустил цикл, а не упал.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := sonic.Marshal(in)
		if err != nil {
			return pkgerrors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(gateway.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(gateway.ErrUnavailable, err.Error())
	}
	if resp.StatusCode/100 == 5 {
		return pkgerrors.Wrapf(gateway.ErrUnavailable, "http %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode/100 != 2 {
		return pkgerrors.Errorf("bridge http %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(err, "decode response")
	}
	return nil
}
