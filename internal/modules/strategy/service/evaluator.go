package service

import (
	"context"
	"math"
	"time"

	"spot_trader/internal/indicators"
	"spot_trader/internal/models"
	"spot_trader/internal/modules/config"
	"spot_trader/pkg/logger"
)

// Пороговые значения RSI для входа. Вместе с фильтром по средней полосе
// Боллинджера отсекают покупку перекупленного и продажу перепроданного.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// Evaluator считает сигнал по каждому символу. Чистая функция от
// (свечи, память): одинаковый вход даёт одинаковый выход.
type Evaluator struct {
	cfg     *config.Config
	candles CandleSource
}

func NewEvaluator(cfg *config.Config, candles CandleSource) *Evaluator {
	return &Evaluator{cfg: cfg, candles: candles}
}

// candleLimit: окно должно покрывать и настроенный slow-период, и
// динамический (до SlowPeriodChoppy баров в шумном рынке).
func (e *Evaluator) candleLimit() int {
	limit := e.cfg.SlowPeriod
	if e.cfg.SlowPeriodChoppy > limit {
		limit = e.cfg.SlowPeriodChoppy
	}
	if limit < 30 {
		limit = 30
	}
	return limit
}

// Evaluate обходит символы в объявленном порядке и возвращает сигналы по
// всем, кто не был пропущен. Память мутирует только поле PrevFastMA;
// действия фиксирует executor.
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time, markets map[string]models.MarketConstraints, mem models.MemoryStore) map[string]models.Signal {
	signals := make(map[string]models.Signal, len(e.cfg.Symbols))

	for _, symbol := range e.cfg.Symbols {
		m := mem.Get(symbol)

		if now.Sub(m.LastActionAt) < e.cfg.Cooldown {
			logger.Info("[%s] skipped due to cooldown", symbol)
			continue
		}

		limits, ok := markets[symbol]
		if !ok || !limits.Valid() {
			logger.Warn("[%s] skipped due to missing market limits", symbol)
			continue
		}

		candles, err := e.candles.GetCandles(ctx, symbol, e.cfg.Timeframe, e.candleLimit())
		if err != nil {
			logger.Error("[%s] candles fetch failed: %v", symbol, err)
			continue
		}
		closes := models.Closes(candles)
		if len(closes) == 0 {
			logger.Warn("[%s] skipped: empty candle window", symbol)
			continue
		}

		volatility := indicators.ReturnVolatility(closes)
		slowPeriod := e.cfg.SlowPeriodCalm
		if volatility > e.cfg.VolatilityChoppy {
			slowPeriod = e.cfg.SlowPeriodChoppy
		}
		logger.Info("[%s] volatility: %.6f (%s)", symbol, volatility, indicators.CategorizeVolatility(volatility))

		fastMA := indicators.SMA(closes, e.cfg.FastPeriod)
		slowMA := indicators.SMA(closes, slowPeriod)
		rsi := indicators.RSI(closes, indicators.RSIPeriod)
		macd, _, histogram := indicators.MACD(closes, indicators.MACDFastPeriod, indicators.MACDSlowPeriod, indicators.MACDSignalPeriod)
		_, middle, _ := indicators.BollingerBands(closes, indicators.BollingerPeriod, indicators.BollingerMultiplier)
		currentPrice := closes[len(closes)-1]

		prevFastMA := fastMA
		if m.HasPrevFast {
			prevFastMA = m.PrevFastMA
		}

		side := decide(fastMA, slowMA, rsi, histogram, currentPrice, middle,
			m.LastAction, prevFastMA, e.cfg.PriceTrendDelta)

		strength := math.Abs(fastMA - slowMA)
		if math.IsNaN(strength) {
			strength = 0
		}
		signals[symbol] = models.Signal{Symbol: symbol, Side: side, Strength: strength}

		logger.Info("[%s] fastMA=%.4f slowMA=%.4f rsi=%.2f macd=%.4f bb-mid=%.2f signal=%s",
			symbol, fastMA, slowMA, rsi, macd, middle, sideLabel(side))

		// fastMA запоминаем всегда, независимо от сигнала: на следующем
		// цикле по нему проверяется дельта повторного входа.
		m.PrevFastMA = fastMA
		m.HasPrevFast = true
	}

	return signals
}

// decide — чистое решающее правило по уже посчитанным индикаторам.
// Дельта повторного входа гасит повторные сигналы на плоском тренде.
func decide(fastMA, slowMA, rsi, histogram, price, middle float64,
	lastAction models.Side, prevFastMA, delta float64) models.Side {

	shouldBuy := fastMA > slowMA &&
		rsi < rsiOverbought &&
		histogram > 0 &&
		price < middle &&
		(lastAction != models.SideBuy || fastMA-prevFastMA > delta)

	shouldSell := fastMA < slowMA &&
		rsi > rsiOversold &&
		histogram < 0 &&
		price > middle &&
		(lastAction != models.SideSell || prevFastMA-fastMA > delta)

	switch {
	case shouldBuy:
		return models.SideBuy
	case shouldSell:
		return models.SideSell
	default:
		return models.SideNone
	}
}

func sideLabel(s models.Side) string {
	if s == models.SideNone {
		return "NONE"
	}
	return string(s)
}
