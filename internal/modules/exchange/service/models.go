package service

// Строгие типы ответов Binance REST. Динамические payload'ы дальше
// границы клиента не проходят.

type exchangeInfoResponse struct {
	Symbols []marketInfo `json:"symbols"`
}

type marketInfo struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []marketFilter `json:"filters"`
}

type marketFilter struct {
	FilterType  string `json:"filterType"`
	MinQty      string `json:"minQty"`
	MinNotional string `json:"minNotional"`
}

type accountResponse struct {
	Balances []balanceEntry `json:"balances"`
}

type balanceEntry struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type orderResponse struct {
	Symbol              string      `json:"symbol"`
	OrderID             int64       `json:"orderId"`
	Status              string      `json:"status"`
	ExecutedQty         string      `json:"executedQty"`
	CummulativeQuoteQty string      `json:"cummulativeQuoteQty"`
	Fills               []orderFill `json:"fills"`
}

type orderFill struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
