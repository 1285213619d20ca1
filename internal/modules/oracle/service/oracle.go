package service

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client reads reference rates from the oracle service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type averageRateResponse struct {
	FutureID string `json:"futureId"`
	AvgRate  string `json:"avgRate"` // 18 decimals
}

func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// AverageRate returns the trailing average trade rate of the future in
// 18-decimal fixed point.
func (c *Client) AverageRate(ctx context.Context, marketID, futureID string) (*big.Int, error) {
	var resp averageRateResponse
	path := "/futures/" + url.PathEscape(futureID) + "/average-rate?marketId=" + url.QueryEscape(marketID)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, errors.Wrapf(err, "average rate %s", futureID)
	}
	v, ok := new(big.Int).SetString(resp.AvgRate, 10)
	if !ok {
		return nil, errors.Errorf("average rate %s: bad value %q", futureID, resp.AvgRate)
	}
	return v, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(raw))
	}
	return sonic.Unmarshal(raw, out)
}
