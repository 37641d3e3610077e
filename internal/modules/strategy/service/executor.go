package service

import (
	"context"
	"math"
	"sort"
	"time"

	"spot_trader/internal/indicators"
	"spot_trader/internal/models"
	"spot_trader/internal/modules/config"
	"spot_trader/pkg/logger"
)

const quoteAsset = "USDT"

// Executor — верхний уровень политики: ребаланс / одиночная покупка /
// одиночная продажа / простой. За цикл проходит одно из состояний,
// следующий триггер начинает с чистого листа. Ошибка по одному символу
// никогда не роняет остаток цикла.
type Executor struct {
	cfg    *config.Config
	ex     Exchange
	eval   SignalSource
	guard  *AllocationGuard
	ledger TradeLedger
	events EventSink
	n      Notifier
	mem    models.MemoryStore
}

func NewExecutor(
	cfg *config.Config,
	ex Exchange,
	eval SignalSource,
	guard *AllocationGuard,
	ledger TradeLedger,
	events EventSink,
	n Notifier,
	mem models.MemoryStore,
) *Executor {
	return &Executor{
		cfg:    cfg,
		ex:     ex,
		eval:   eval,
		guard:  guard,
		ledger: ledger,
		events: events,
		n:      n,
		mem:    mem,
	}
}

// RunCycle выполняет один торговый цикл. Возвращает число исполненных
// ордеров; любой сбой внутри цикла деградирует до "по этому символу
// ничего не делаем".
func (x *Executor) RunCycle(ctx context.Context, now time.Time) int {
	balance, err := x.ex.GetBalance(ctx)
	if err != nil {
		logger.Error("cycle aborted: balance fetch failed: %v", err)
		return 0
	}
	markets, err := x.ex.GetMarkets(ctx)
	if err != nil {
		logger.Error("cycle aborted: markets fetch failed: %v", err)
		return 0
	}

	signals := x.eval.Evaluate(ctx, now, markets, x.mem)
	buys := x.candidates(signals, models.SideBuy)
	sells := x.candidates(signals, models.SideSell)

	switch {
	case len(buys) > 0 && len(sells) > 0:
		return x.rebalance(ctx, now, buys, sells, balance, markets)
	case len(buys) > 0:
		executed := 0
		for _, c := range buys {
			executed += x.standaloneBuy(ctx, now, c.Symbol, balance, markets)
		}
		return executed
	case len(sells) > 0:
		return x.fallbackSell(ctx, now, sells, balance, markets)
	default:
		logger.Info("no actionable signals this cycle")
		return 0
	}
}

// candidates сохраняет объявленный порядок символов.
func (x *Executor) candidates(signals map[string]models.Signal, side models.Side) []models.Signal {
	var out []models.Signal
	for _, symbol := range x.cfg.Symbols {
		if s, ok := signals[symbol]; ok && s.Side == side {
			out = append(out, s)
		}
	}
	return out
}

// selectStrongest: максимальная сила, при равенстве — лексикографически
// меньший символ. Тай-брейк задан явно, а не порядком списка.
func selectStrongest(cands []models.Signal) models.Signal {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Strength > best.Strength ||
			(c.Strength == best.Strength && c.Symbol < best.Symbol) {
			best = c
		}
	}
	return best
}

// maxUSD — лимит трат по символу; без настройки лимита нет.
func (x *Executor) maxUSD(symbol string) float64 {
	if v, ok := x.cfg.MaxUSDFor(symbol); ok {
		return v
	}
	return math.Inf(1)
}

func (x *Executor) rebalance(ctx context.Context, now time.Time, buys, sells []models.Signal, balance map[string]models.Balance, markets map[string]models.MarketConstraints) int {
	buyPick := selectStrongest(buys)
	sellPick := selectStrongest(sells)
	logger.Info("rebalancing: selling %s to buy %s", sellPick.Symbol, buyPick.Symbol)

	sellAsset := models.BaseAsset(sellPick.Symbol)
	sellBalance := balance[sellAsset].Free
	sellPrice, err := x.ex.GetCurrentPrice(ctx, sellPick.Symbol)
	if err != nil || sellPrice <= 0 {
		logger.Error("[%s] rebalance aborted: price unavailable: %v", sellPick.Symbol, err)
		return 0
	}

	sellAmount := math.Min(sellBalance, x.maxUSD(sellPick.Symbol)/sellPrice)
	if sellAmount <= 0 {
		logger.Warn("insufficient balance to sell %s", sellPick.Symbol)
		return 0
	}

	order, err := x.ex.PlaceMarketSell(ctx, sellPick.Symbol, sellAmount)
	if err != nil {
		logger.Error("[%s] rebalance sell failed: %v", sellPick.Symbol, err)
		x.n.Sendf("⚠️ rebalance sell %s failed: %v", sellPick.Symbol, err)
		return 0
	}
	x.finalize(ctx, now, order)
	logger.Info("[%s] sold %.8f", sellPick.Symbol, order.Amount)

	// покупку финансируем фактической выручкой, а не номиналом
	return 1 + x.buyWithProceeds(ctx, now, buyPick.Symbol, order.Cost, markets)
}

func (x *Executor) buyWithProceeds(ctx context.Context, now time.Time, symbol string, proceeds float64, markets map[string]models.MarketConstraints) int {
	price, err := x.ex.GetCurrentPrice(ctx, symbol)
	if err != nil || price <= 0 {
		logger.Error("[%s] rebuy aborted: price unavailable: %v", symbol, err)
		return 0
	}

	// баланс берём заново: выручка от продажи уже должна быть видна
	balance, err := x.ex.GetBalance(ctx)
	if err != nil {
		logger.Error("[%s] rebuy aborted: balance fetch failed: %v", symbol, err)
		return 0
	}
	usdtFree := balance[quoteAsset].Free

	usdToSpend := math.Min(x.maxUSD(symbol), math.Min(proceeds, usdtFree))
	if usdToSpend <= 0 {
		logger.Warn("[%s] insufficient USDT to rebuy", symbol)
		return 0
	}

	amount := SizeOrder(usdToSpend, price, markets[symbol])
	if !x.guard.Approve(ctx, symbol, amount*price) {
		logger.Info("[%s] rebuy blocked by allocation guard", symbol)
		return 0
	}

	order, err := x.ex.PlaceMarketBuy(ctx, symbol, amount)
	if err != nil {
		logger.Error("[%s] rebuy failed: %v", symbol, err)
		x.n.Sendf("⚠️ rebuy %s failed: %v", symbol, err)
		return 0
	}
	x.finalize(ctx, now, order)
	logger.Info("[%s] bought approx %.8f", symbol, order.Amount)
	return 1
}

func (x *Executor) standaloneBuy(ctx context.Context, now time.Time, symbol string, balance map[string]models.Balance, markets map[string]models.MarketConstraints) int {
	usdtFree := balance[quoteAsset].Free
	price, err := x.ex.GetCurrentPrice(ctx, symbol)
	if err != nil || price <= 0 {
		logger.Error("[%s] buy aborted: price unavailable: %v", symbol, err)
		return 0
	}

	strength := x.trendStrength(ctx, symbol)
	confidence := clamp(strength*x.cfg.ConfidenceScale, x.cfg.ConfidenceMin, x.cfg.ConfidenceMax)
	usdToSpend := math.Min(x.maxUSD(symbol), usdtFree) * confidence
	if usdToSpend <= 0 {
		logger.Info("[%s] no USDT available for standalone buy", symbol)
		return 0
	}

	amount := SizeOrder(usdToSpend, price, markets[symbol])
	if !x.guard.Approve(ctx, symbol, amount*price) {
		logger.Warn("[%s] trade blocked: would exceed portfolio allocation", symbol)
		return 0
	}

	// свободный USDT — жёсткий лимит, даже если guard пропустил
	if amount*price > usdtFree {
		if x.cfg.FallbackLiquidate && x.SellWorstToFund(ctx, now, symbol, amount*price, balance) {
			if fresh, err := x.ex.GetBalance(ctx); err == nil {
				balance = fresh
				usdtFree = balance[quoteAsset].Free
			}
		}
		if amount*price > usdtFree {
			logger.Warn("[%s] not enough USDT: required %.2f, available %.2f",
				symbol, amount*price, usdtFree)
			return 0
		}
	}

	order, err := x.ex.PlaceMarketBuy(ctx, symbol, amount)
	if err != nil {
		logger.Error("[%s] standalone buy failed: %v", symbol, err)
		x.n.Sendf("⚠️ buy %s failed: %v", symbol, err)
		return 0
	}
	x.finalize(ctx, now, order)
	logger.Info("[%s] bought %.8f (confidence x%.2f, strength=%.4f)",
		symbol, order.Amount, confidence, strength)
	return 1
}

// trendStrength — |fastMA-slowMA| на настроенных периодах, для
// масштабирования номинала. 0 при нехватке данных: множитель
// уверенности схлопнется в нижнюю границу.
func (x *Executor) trendStrength(ctx context.Context, symbol string) float64 {
	limit := x.cfg.SlowPeriod
	if limit < 30 {
		limit = 30
	}
	candles, err := x.ex.GetCandles(ctx, symbol, x.cfg.Timeframe, limit)
	if err != nil {
		logger.Warn("[%s] strength fetch failed: %v", symbol, err)
		return 0
	}
	closes := models.Closes(candles)
	fastMA := indicators.SMA(closes, x.cfg.FastPeriod)
	slowMA := indicators.SMA(closes, x.cfg.SlowPeriod)
	strength := math.Abs(fastMA - slowMA)
	if math.IsNaN(strength) {
		return 0
	}
	return strength
}

func (x *Executor) fallbackSell(ctx context.Context, now time.Time, sells []models.Signal, balance map[string]models.Balance, markets map[string]models.MarketConstraints) int {
	pick := selectStrongest(sells)
	asset := models.BaseAsset(pick.Symbol)
	free := balance[asset].Free
	if free <= 0 {
		logger.Warn("[%s] no balance to sell", pick.Symbol)
		return 0
	}

	price, err := x.ex.GetCurrentPrice(ctx, pick.Symbol)
	if err != nil || price <= 0 {
		logger.Error("[%s] sell aborted: price unavailable: %v", pick.Symbol, err)
		return 0
	}

	sellAmount := math.Min(free, x.maxUSD(pick.Symbol)/price)
	sellAmount = SizeOrder(sellAmount*price, price, markets[pick.Symbol])

	order, err := x.ex.PlaceMarketSell(ctx, pick.Symbol, sellAmount)
	if err != nil {
		logger.Error("[%s] standalone sell failed: %v", pick.Symbol, err)
		x.n.Sendf("⚠️ sell %s failed: %v", pick.Symbol, err)
		return 0
	}
	x.finalize(ctx, now, order)
	logger.Info("[%s] sold %.8f as standalone SELL", pick.Symbol, order.Amount)
	return 1
}

type assetPerformance struct {
	asset  string
	symbol string
	amount float64
	value  float64
	price  float64
	pnlPct float64
}

// SellWorstToFund продаёт худшую по P&L позицию, чтобы высвободить USDT
// под конкретную покупку. Лузеры режутся первыми; берётся первый актив,
// чья стоимость покрывает хотя бы половину требуемой суммы. Вызывается
// только явно — автоматической распродажи в цикле нет.
func (x *Executor) SellWorstToFund(ctx context.Context, now time.Time, forSymbol string, neededUSDT float64, balance map[string]models.Balance) bool {
	var assets []string
	for asset, b := range balance {
		if asset != quoteAsset && b.Free > 0 {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)

	var perfs []assetPerformance
	for _, asset := range assets {
		symbol := asset + "/" + quoteAsset
		price, err := x.ex.GetCurrentPrice(ctx, symbol)
		if err != nil || price <= 0 {
			logger.Warn("[%s] pnl calc failed: %v", symbol, err)
			continue
		}
		amount := balance[asset].Free

		entry := price
		if rec, err := x.ledger.LastBuy(ctx, symbol); err != nil {
			logger.Warn("[%s] last buy lookup failed: %v", symbol, err)
		} else if rec != nil && rec.Price > 0 {
			entry = rec.Price
		}

		perfs = append(perfs, assetPerformance{
			asset:  asset,
			symbol: symbol,
			amount: amount,
			value:  amount * price,
			price:  price,
			pnlPct: (price - entry) / entry * 100,
		})
	}

	sort.SliceStable(perfs, func(i, j int) bool { return perfs[i].pnlPct < perfs[j].pnlPct })

	for _, p := range perfs {
		if p.value < neededUSDT*0.5 {
			continue
		}
		sellAmount := math.Min(p.amount, neededUSDT/p.price)
		order, err := x.ex.PlaceMarketSell(ctx, p.symbol, sellAmount)
		if err != nil {
			logger.Error("[%s] liquidation sell failed: %v", p.symbol, err)
			continue
		}
		x.finalize(ctx, now, order)
		logger.Info("sold %.8f of %s (pnl %.2f%%) to fund %s purchase",
			order.Amount, p.asset, p.pnlPct, forSymbol)
		return true
	}

	logger.Warn("could not sell any assets to fund %s purchase", forSymbol)
	return false
}

// finalize фиксирует исполненный ордер: память символа, леджер, события.
// Сбой записи не отменяет сделку — она уже на бирже, только логируем.
func (x *Executor) finalize(ctx context.Context, now time.Time, order *models.OrderResult) {
	x.mem.MarkAction(order.Symbol, order.Side, now)

	if err := x.ledger.RecordTrade(ctx, order.Side, order.Symbol, order.Price, order.Amount, now); err != nil {
		logger.Error("[%s] trade record failed: %v", order.Symbol, err)
	}

	x.events.EmitTrade(models.TradeEvent{
		Symbol:    order.Symbol,
		Side:      string(order.Side),
		Price:     models.EightDecimals(order.Price),
		Amount:    models.EightDecimals(order.Amount),
		Timestamp: now,
	})
	x.n.Sendf("✅ %s %s %.8f @ %.8f", order.Side, order.Symbol, order.Amount, order.Price)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
