package main

import (
    "context"
    "encoding/json"
    "flag"
    "log"
    "os"
    "time"

    "cryptodash/internal/config"
    "cryptodash/internal/httpx"
    "cryptodash/internal/logging"
    "cryptodash/internal/provider/coingecko"
)

// fetch performs a single price request and prints the result as JSON.
func main() {
    var coinsCSV string
    var timeout int
    var configPath string
    var verbose bool

    flag.StringVar(&coinsCSV, "coins", getenv("COINS", "bitcoin,ethereum"), "comma-separated coin ids")
    flag.IntVar(&timeout, "timeout", 0, "request timeout seconds")
    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml (optional)")
    flag.BoolVar(&verbose, "verbose", false, "debug logging")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if coinsCSV != "" { cfg.Dashboard.Coins = config.Unique(config.SplitCSV(coinsCSV)) }
    if timeout > 0 { cfg.CoinGecko.RequestTimeoutSec = timeout }
    if err := cfg.Validate(); err != nil { log.Fatalf("config: %v", err) }

    logger, closer, err := logging.New("", verbose, os.Stderr)
    if err != nil { log.Fatalf("logging: %v", err) }
    defer closer.Close()

    d := time.Duration(cfg.CoinGecko.RequestTimeoutSec) * time.Second
    httpClient := httpx.New(d)
    client, err := coingecko.NewCoinGeckoAPIClient(
        cfg.CoinGecko.APIKey,
        coingecko.WithHTTPClient(httpClient),
        coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
        coingecko.WithCurrency(cfg.CoinGecko.Currency),
        coingecko.WithTimeout(d),
        coingecko.WithLogger(logger),
    )
    if err != nil { log.Fatalf("coingecko client: %v", err) }
    defer client.Close()

    quotes, err := client.Fetch(context.Background(), cfg.Dashboard.Coins)
    if err != nil {
        logger.WithError(err).Error("fetch failed")
        client.Close()
        os.Exit(1)
    }

    enc := json.NewEncoder(os.Stdout)
    enc.SetIndent("", "  ")
    if err := enc.Encode(quotes); err != nil { log.Fatalf("encode: %v", err) }
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
