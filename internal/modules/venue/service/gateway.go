package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"rate_bot/internal/models"
)

const (
	headerAccount   = "X-Account"
	headerTimestamp = "X-Timestamp"
	headerSignature = "X-Signature"
)

// Gateway talks to the venue's HTTP view/quote service. It owns market data
// and trade calldata; signing and submission stay on the Chain side.
type Gateway struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewGateway(baseURL string, timeout time.Duration, rps float64) *Gateway {
	if rps <= 0 {
		rps = 5
	}
	return &Gateway{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type quoteRequest struct {
	MarketID string         `json:"marketId"`
	FutureID string         `json:"futureId"`
	Notional *big.Int       `json:"notional"`
	Account  common.Address `json:"account"`
}

type calldataRequest struct {
	MarketID        string         `json:"marketId"`
	FutureID        string         `json:"futureId"`
	RiskDirection   int            `json:"riskDirection"`
	Notional        *big.Int       `json:"notional"`
	FutureRateLimit *big.Int       `json:"futureRateLimit"`
	DepositAmount   *big.Int       `json:"depositAmount"`
	Deadline        int64          `json:"deadline"`
	Account         common.Address `json:"account"`
}

type calldataResponse struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

func (g *Gateway) ActiveMarkets(ctx context.Context) ([]models.Market, error) {
	var out []models.Market
	if err := g.do(ctx, http.MethodGet, "/markets/active", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "active markets")
	}
	return out, nil
}

func (g *Gateway) Portfolio(ctx context.Context, acc *Account, marketID string) (models.Portfolio, error) {
	var out models.Portfolio
	path := "/markets/" + url.PathEscape(marketID) + "/portfolio?account=" + acc.Address.Hex()
	if err := g.do(ctx, http.MethodGet, path, nil, acc, &out); err != nil {
		return models.Portfolio{}, errors.Wrapf(err, "portfolio %s", marketID)
	}
	return out, nil
}

func (g *Gateway) Quote(ctx context.Context, acc *Account, marketID, futureID string, notional *big.Int) (models.TradeQuote, error) {
	req := quoteRequest{MarketID: marketID, FutureID: futureID, Notional: notional, Account: acc.Address}
	var out models.TradeQuote
	if err := g.do(ctx, http.MethodPost, "/quote", req, acc, &out); err != nil {
		return models.TradeQuote{}, errors.Wrapf(err, "quote %s", futureID)
	}
	out.Notional = new(big.Int).Set(notional)
	return out, nil
}

// TradeCalldata asks the venue to encode the router call for params.
func (g *Gateway) TradeCalldata(ctx context.Context, acc *Account, p models.TradeParams) (common.Address, []byte, error) {
	req := calldataRequest{
		MarketID:        p.MarketID,
		FutureID:        p.FutureID,
		RiskDirection:   p.Direction.Wire(),
		Notional:        p.Notional,
		FutureRateLimit: p.FutureRateLimit,
		DepositAmount:   p.DepositAmount,
		Deadline:        p.Deadline.Unix(),
		Account:         acc.Address,
	}
	var out calldataResponse
	if err := g.do(ctx, http.MethodPost, "/trades/calldata", req, acc, &out); err != nil {
		return common.Address{}, nil, errors.Wrap(err, "trade calldata")
	}
	return out.To, out.Data, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, in any, acc *Account, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}

	var body []byte
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if acc != nil {
		if err := signRequest(req, acc, body); err != nil {
			return err
		}
	}

	resp, err := g.http.Do(req)
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
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// signRequest authenticates the call as the account: personal signature
// over timestamp + method + path + body.
func signRequest(req *http.Request, acc *Account, body []byte) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	msg := ts + req.Method + req.URL.RequestURI() + string(body)

	sig, err := acc.SignMessage([]byte(msg))
	if err != nil {
		return err
	}
	req.Header.Set(headerAccount, acc.Address.Hex())
	req.Header.Set(headerTimestamp, ts)
	req.Header.Set(headerSignature, hexutil.Encode(sig))
	return nil
}
