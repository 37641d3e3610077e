package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	binanceKeyENV     = "BINANCE_API_KEY"
	binanceSecretENV  = "BINANCE_API_SECRET"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Binance struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"binance"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
	Gateway struct {
		Addr string `yaml:"addr"` // ws-шлюз для дашборда, напр. ":8090"
	} `yaml:"gateway"`
	Health struct {
		Addr string `yaml:"addr"` // напр. ":8080"
	} `yaml:"health"`

	// Торгуемые пары в фиксированном порядке обхода.
	Symbols     []string `yaml:"symbols"`
	Timeframe   string   `yaml:"timeframe"`
	AssetsToLog []string `yaml:"assets_to_log"`

	// Периоды скользящих и правило повторного входа.
	FastPeriod      int     `yaml:"fast_period"`
	SlowPeriod      int     `yaml:"slow_period"`
	PriceTrendDelta float64 `yaml:"price_trend_delta"`
	// Интервалы задаются через ENV (TRADE_COOLDOWN, CYCLE_INTERVAL,
	// SNAPSHOT_INTERVAL): yaml.v2 не умеет "60s" в time.Duration.
	Cooldown time.Duration `yaml:"-"`

	// Риск-лимиты.
	MaxUSDPerTrade   map[string]float64 `yaml:"max_usd_per_trade"`  // по символу
	MaxWeightPercent map[string]float64 `yaml:"max_weight_percent"` // по активу

	// Подобранные эмпирически константы политики. Не истина — настройка.
	VolatilityChoppy  float64 `yaml:"volatility_choppy"`   // порог «шумного» рынка
	SlowPeriodCalm    int     `yaml:"slow_period_calm"`    // 50
	SlowPeriodChoppy  int     `yaml:"slow_period_choppy"`  // 100
	ConfidenceScale   float64 `yaml:"confidence_scale"`    // strength * 5
	ConfidenceMin     float64 `yaml:"confidence_min"`      // 0.5
	ConfidenceMax     float64 `yaml:"confidence_max"`      // 1.5
	FallbackLiquidate bool    `yaml:"fallback_liquidate"`  // распродажа худшей позиции под покупку

	// Расписание.
	CycleInterval    time.Duration `yaml:"-"`
	SnapshotInterval time.Duration `yaml:"-"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Timeframe: "1m",

		FastPeriod:      intFromEnv("FAST_PERIOD", 5),
		SlowPeriod:      intFromEnv("SLOW_PERIOD", 20),
		PriceTrendDelta: floatFromEnv("PRICE_TREND_DELTA", 0.1),
		Cooldown:        durationFromEnv("TRADE_COOLDOWN", "60s"),

		VolatilityChoppy: floatFromEnv("VOLATILITY_CHOPPY", 0.0025),
		SlowPeriodCalm:   intFromEnv("SLOW_PERIOD_CALM", 50),
		SlowPeriodChoppy: intFromEnv("SLOW_PERIOD_CHOPPY", 100),
		ConfidenceScale:  floatFromEnv("CONFIDENCE_SCALE", 5),
		ConfidenceMin:    floatFromEnv("CONFIDENCE_MIN", 0.5),
		ConfidenceMax:    floatFromEnv("CONFIDENCE_MAX", 1.5),

		CycleInterval:    durationFromEnv("CYCLE_INTERVAL", "60s"),
		SnapshotInterval: durationFromEnv("SNAPSHOT_INTERVAL", "5m"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}
	if v := os.Getenv(binanceKeyENV); v != "" {
		config.Binance.APIKey = v
	}
	if v := os.Getenv(binanceSecretENV); v != "" {
		config.Binance.APISecret = v
	}

	if config.Binance.BaseURL == "" {
		config.Binance.BaseURL = "https://api.binance.com"
	}
	if len(config.Symbols) == 0 {
		config.Symbols = []string{"BTC/USDT", "ETH/USDT", "LTC/USDT", "XRP/USDT"}
	}
	if len(config.AssetsToLog) == 0 {
		config.AssetsToLog = []string{"BTC", "ETH", "LTC", "XRP", "USDT"}
	}
	if config.FastPeriod >= config.SlowPeriod {
		return nil, fmt.Errorf("fast_period must be < slow_period")
	}

	return &config, nil
}

// MaxUSDFor — лимит на сделку по символу; без настройки лимита нет.
func (c *Config) MaxUSDFor(symbol string) (float64, bool) {
	v, ok := c.MaxUSDPerTrade[symbol]
	return v, ok
}

// MaxWeightFor — потолок веса актива в портфеле, по умолчанию 100%.
func (c *Config) MaxWeightFor(asset string) float64 {
	if v, ok := c.MaxWeightPercent[asset]; ok {
		return v
	}
	return 100
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
