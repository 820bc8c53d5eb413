package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"

    "cryptodash/internal/config"
    "cryptodash/internal/dashboard"
    "cryptodash/internal/httpx"
    "cryptodash/internal/logging"
    "cryptodash/internal/provider"
    "cryptodash/internal/provider/coingecko"
    "cryptodash/internal/provider/ratelimit"
)

func main() {
    os.Exit(run())
}

func run() int {
    var configPath string
    var coinsCSV string
    var interval int
    var timeout int
    var verbose bool
    var logFile string
    var baseURL string

    flag.Usage = func() {
        fmt.Fprintf(flag.CommandLine.Output(), "Real-time cryptocurrency price dashboard.\n\nUsage: %s [flags]\n\n", os.Args[0])
        flag.PrintDefaults()
        fmt.Fprint(flag.CommandLine.Output(), "\nExamples:\n  dashboard\n  dashboard -coins bitcoin,ethereum,solana\n  dashboard -interval 30 -verbose\n")
    }
    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml (optional)")
    flag.StringVar(&coinsCSV, "coins", "", "comma-separated list of coin ids (default: bitcoin,ethereum,dogecoin,cardano,solana)")
    flag.IntVar(&interval, "interval", 0, "update interval in seconds (default: 10)")
    flag.IntVar(&timeout, "timeout", 0, "request timeout in seconds (default: 10)")
    flag.BoolVar(&verbose, "verbose", false, "enable verbose logging")
    flag.StringVar(&logFile, "log-file", "", "log file path (default: crypto_dashboard.log)")
    flag.StringVar(&baseURL, "base-url", "", "price service base URL")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        return 1
    }
    // Flags win over file and env when provided.
    if coinsCSV != "" { cfg.Dashboard.Coins = config.Unique(config.SplitCSV(coinsCSV)) }
    if isFlagSet("interval") { cfg.Dashboard.UpdateIntervalSec = interval }
    if isFlagSet("timeout") { cfg.CoinGecko.RequestTimeoutSec = timeout }
    if verbose { cfg.Dashboard.Verbose = true }
    if logFile != "" { cfg.Dashboard.LogFile = logFile }
    if baseURL != "" { cfg.CoinGecko.BaseURL = baseURL }
    if err := cfg.Validate(); err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        return 1
    }

    logger, logCloser, err := logging.New(cfg.Dashboard.LogFile, cfg.Dashboard.Verbose, os.Stdout)
    if err != nil {
        fmt.Fprintf(os.Stderr, "logging: %v\n", err)
        return 1
    }
    defer logCloser.Close()

    p, err := newProvider(cfg, logger)
    if err != nil {
        logger.WithError(err).Error("creating price client")
        return 1
    }

    d, err := dashboard.New(dashboard.Config{
        Coins:    cfg.Dashboard.Coins,
        Interval: time.Duration(cfg.Dashboard.UpdateIntervalSec) * time.Second,
        Currency: cfg.CoinGecko.Currency,
    }, p, dashboard.WithLogger(logger))
    if err != nil {
        _ = p.Close()
        logger.WithError(err).Error("creating dashboard")
        return 1
    }

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    if err := d.Run(ctx); err != nil {
        logger.WithError(err).Error("dashboard")
        return 1
    }
    return 0
}

// newProvider builds the CoinGecko client on a dedicated HTTP session.
func newProvider(cfg config.Config, logger logrus.FieldLogger) (provider.Provider, error) {
    timeout := time.Duration(cfg.CoinGecko.RequestTimeoutSec) * time.Second
    httpClient := httpx.New(timeout)

    client, err := coingecko.NewCoinGeckoAPIClient(
        cfg.CoinGecko.APIKey,
        coingecko.WithHTTPClient(httpClient),
        coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
        coingecko.WithCurrency(cfg.CoinGecko.Currency),
        coingecko.WithTimeout(timeout),
        coingecko.WithLogger(logger),
    )
    if err != nil {
        _ = httpClient.Close()
        return nil, err
    }
    var p provider.Provider = client
    if cfg.CoinGecko.MinRequestIntervalSec > 0 {
        p = ratelimit.New(p, time.Duration(cfg.CoinGecko.MinRequestIntervalSec)*time.Second, logger)
    }
    return p, nil
}

func isFlagSet(name string) bool {
    set := false
    flag.Visit(func(f *flag.Flag) {
        if f.Name == name { set = true }
    })
    return set
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
