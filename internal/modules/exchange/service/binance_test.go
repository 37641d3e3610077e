package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"spot_trader/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("key", "secret", WithBaseURL(srv.URL))
}

func TestGetMarketsParsesFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT",
			 "filters":[{"filterType":"LOT_SIZE","minQty":"0.00010000"},
			            {"filterType":"NOTIONAL","minNotional":"10.00000000"}]},
			{"symbol":"OLDUSDT","status":"BREAK","baseAsset":"OLD","quoteAsset":"USDT","filters":[]}
		]}`))
	})

	markets, err := c.GetMarkets(context.Background())
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	mc, ok := markets["BTC/USDT"]
	if !ok {
		t.Fatalf("BTC/USDT missing from markets: %v", markets)
	}
	if mc.MinAmount != 0.0001 || mc.MinCost != 10 {
		t.Fatalf("constraints = %+v, want minAmount=0.0001 minCost=10", mc)
	}
	if _, ok := markets["OLD/USDT"]; ok {
		t.Fatalf("non-trading market must be skipped")
	}
}

func TestGetCandlesParsesRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("symbol = %q, want BTCUSDT", got)
		}
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","110.0","90.0","105.0","12.5",1700000059999,"0",1,"0","0","0"],
			[1700000060000,"105.0","112.0","104.0","111.0","7.1",1700000119999,"0",1,"0","0","0"]
		]`))
	})

	candles, err := c.GetCandles(context.Background(), "BTC/USDT", "1m", 2)
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[0].Close != 105 || candles[1].Close != 111 {
		t.Fatalf("closes = %v, %v; want 105, 111", candles[0].Close, candles[1].Close)
	}
	if candles[0].Volume != 12.5 {
		t.Fatalf("volume = %v, want 12.5", candles[0].Volume)
	}
}

func TestGetCurrentPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"2450.12000000"}`))
	})

	price, err := c.GetCurrentPrice(context.Background(), "ETH/USDT")
	if err != nil {
		t.Fatalf("GetCurrentPrice: %v", err)
	}
	if price != 2450.12 {
		t.Fatalf("price = %v, want 2450.12", price)
	}
}

func TestGetBalanceSignedAndFiltered(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			t.Fatalf("missing api key header")
		}
		if r.URL.Query().Get("signature") == "" {
			t.Fatalf("missing signature")
		}
		_, _ = w.Write([]byte(`{"balances":[
			{"asset":"BTC","free":"0.50000000","locked":"0.10000000"},
			{"asset":"DUST","free":"0.00000000","locked":"0.00000000"}
		]}`))
	})

	bal, err := c.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if b := bal["BTC"]; b.Free != 0.5 || b.Locked != 0.1 {
		t.Fatalf("BTC balance = %+v", b)
	}
	if _, ok := bal["DUST"]; ok {
		t.Fatalf("zero balances must be dropped")
	}
}

func TestPlaceMarketBuyComputesRealizedPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		q := r.URL.Query()
		if q.Get("side") != "BUY" || q.Get("type") != "MARKET" {
			t.Fatalf("unexpected order params: %v", q)
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":1,"status":"FILLED",
			"executedQty":"0.00200000","cummulativeQuoteQty":"60.00000000",
			"fills":[{"price":"30000.0","qty":"0.002"}]}`))
	})

	order, err := c.PlaceMarketBuy(context.Background(), "BTC/USDT", 0.002)
	if err != nil {
		t.Fatalf("PlaceMarketBuy: %v", err)
	}
	if order.Amount != 0.002 || order.Cost != 60 {
		t.Fatalf("order = %+v", order)
	}
	if order.Price != 30000 {
		t.Fatalf("realized price = %v, want 30000", order.Price)
	}
}

func TestOrderRejectionSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1013,"msg":"Filter failure: LOT_SIZE"}`))
	})

	_, err := c.PlaceMarketBuy(context.Background(), "BTC/USDT", 0.000001)
	if err == nil {
		t.Fatalf("expected error on rejected order")
	}
}
