package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spot_trader/internal/models"
	"spot_trader/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client — spot REST-клиент Binance. Пары принимает в виде "BTC/USDT".
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	limiter   *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   "https://api.binance.com",
		apiKey:    apiKey,
		apiSecret: apiSecret,
		// spot weight limit с запасом: ~10 запросов/сек
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// pairToMarket: "BTC/USDT" -> "BTCUSDT".
func pairToMarket(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

func (c *Client) GetMarkets(ctx context.Context) (map[string]models.MarketConstraints, error) {
	var resp exchangeInfoResponse
	if err := c.getJSON(ctx, "/api/v3/exchangeInfo", nil, false, &resp); err != nil {
		return nil, errors.Wrap(err, "exchange info")
	}

	markets := make(map[string]models.MarketConstraints, len(resp.Symbols))
	for _, m := range resp.Symbols {
		if m.Status != "TRADING" {
			continue
		}
		var mc models.MarketConstraints
		for _, f := range m.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				mc.MinAmount, _ = strconv.ParseFloat(f.MinQty, 64)
			case "NOTIONAL", "MIN_NOTIONAL":
				mc.MinCost, _ = strconv.ParseFloat(f.MinNotional, 64)
			}
		}
		markets[m.BaseAsset+"/"+m.QuoteAsset] = mc
	}
	return markets, nil
}

func (c *Client) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", pairToMarket(symbol))
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))

	var rows [][]any
	if err := c.getJSON(ctx, "/api/v3/klines", q, false, &rows); err != nil {
		return nil, errors.Wrapf(err, "klines %s", symbol)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, errors.Errorf("klines %s: short row (%d fields)", symbol, len(row))
		}
		openMs, ok := row[0].(float64)
		if !ok {
			return nil, errors.Errorf("klines %s: unexpected open time %T", symbol, row[0])
		}
		cd := models.Candle{OpenTime: time.UnixMilli(int64(openMs))}
		for i, dst := range []*float64{&cd.Open, &cd.High, &cd.Low, &cd.Close, &cd.Volume} {
			s, ok := row[i+1].(string)
			if !ok {
				return nil, errors.Errorf("klines %s: unexpected field %d type %T", symbol, i+1, row[i+1])
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "klines %s: field %d", symbol, i+1)
			}
			*dst = v
		}
		candles = append(candles, cd)
	}
	return candles, nil
}

func (c *Client) GetBalance(ctx context.Context) (map[string]models.Balance, error) {
	var resp accountResponse
	if err := c.getJSON(ctx, "/api/v3/account", url.Values{}, true, &resp); err != nil {
		return nil, errors.Wrap(err, "account")
	}

	out := make(map[string]models.Balance, len(resp.Balances))
	for _, b := range resp.Balances {
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		if free == 0 && locked == 0 {
			continue
		}
		out[b.Asset] = models.Balance{Free: free, Locked: locked}
	}
	return out, nil
}

func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", pairToMarket(symbol))

	var resp tickerPriceResponse
	if err := c.getJSON(ctx, "/api/v3/ticker/price", q, false, &resp); err != nil {
		return 0, errors.Wrapf(err, "ticker %s", symbol)
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "ticker %s: bad price %q", symbol, resp.Price)
	}
	return price, nil
}

func (c *Client) PlaceMarketBuy(ctx context.Context, symbol string, amount float64) (*models.OrderResult, error) {
	return c.placeMarket(ctx, symbol, models.SideBuy, amount)
}

func (c *Client) PlaceMarketSell(ctx context.Context, symbol string, amount float64) (*models.OrderResult, error) {
	return c.placeMarket(ctx, symbol, models.SideSell, amount)
}

func (c *Client) placeMarket(ctx context.Context, symbol string, side models.Side, amount float64) (*models.OrderResult, error) {
	q := url.Values{}
	q.Set("symbol", pairToMarket(symbol))
	q.Set("side", string(side))
	q.Set("type", "MARKET")
	q.Set("quantity", strconv.FormatFloat(amount, 'f', -1, 64))

	// Ордера не ретраим: повтор после неясного таймаута может задвоить сделку.
	body, err := c.do(ctx, http.MethodPost, "/api/v3/order", q, true)
	if err != nil {
		return nil, errors.Wrapf(err, "market %s %s", side, symbol)
	}

	var resp orderResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(err, "market %s %s: decode", side, symbol)
	}

	executed, _ := strconv.ParseFloat(resp.ExecutedQty, 64)
	cost, _ := strconv.ParseFloat(resp.CummulativeQuoteQty, 64)
	if executed <= 0 {
		return nil, errors.Errorf("market %s %s: nothing executed (status=%s)", side, symbol, resp.Status)
	}

	return &models.OrderResult{
		Symbol: symbol,
		Side:   side,
		Price:  cost / executed,
		Amount: executed,
		Cost:   cost,
	}, nil
}

// getJSON — GET с ретраями; безопасно только для идемпотентных запросов.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, signed bool, dst any) error {
	op := func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, q, signed)
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	body, err := backoff.RetryWithData(op, bo)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(body, dst)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, signed bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if signed {
		q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		q.Set("recvWindow", "5000")
	}
	encoded := q.Encode()
	if signed {
		// подпись считается по итоговой строке запроса, поэтому
		// параметр signature добавляется после кодирования
		encoded += "&signature=" + c.sign(encoded)
	}

	u := c.baseURL + path
	if encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := sonic.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
			err := fmt.Errorf("binance %s: %s (code=%d)", path, apiErr.Msg, apiErr.Code)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				// клиентские ошибки ретраить бессмысленно
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		logger.Warn("binance %s: http %d: %s", path, resp.StatusCode, string(body))
		return nil, fmt.Errorf("binance %s: http %d", path, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
