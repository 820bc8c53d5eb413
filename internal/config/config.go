package config

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"

    "gopkg.in/yaml.v3"
)

type Dashboard struct {
    Coins             []string `yaml:"coins"`
    UpdateIntervalSec int      `yaml:"update_interval_sec"`
    LogFile           string   `yaml:"log_file"`
    Verbose           bool     `yaml:"verbose"`
}

type CoinGecko struct {
    BaseURL               string `yaml:"base_url"`
    APIKey                string `yaml:"api_key"`
    Currency              string `yaml:"currency"`
    RequestTimeoutSec     int    `yaml:"request_timeout_sec"`
    MinRequestIntervalSec int    `yaml:"min_request_interval_sec"`
}

type Config struct {
    Dashboard Dashboard `yaml:"dashboard"`
    CoinGecko CoinGecko `yaml:"coingecko"`
}

func Default() Config {
    return Config{
        Dashboard: Dashboard{
            Coins:             []string{"bitcoin", "ethereum", "dogecoin", "cardano", "solana"},
            UpdateIntervalSec: 10,
            LogFile:           "crypto_dashboard.log",
        },
        CoinGecko: CoinGecko{
            BaseURL:           "https://api.coingecko.com/api/v3",
            Currency:          "usd",
            RequestTimeoutSec: 10,
        },
    }
}

// Load reads YAML config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.yaml"); err == nil {
            path = "config.yaml"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := yaml.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    if err := applyEnv(&cfg); err != nil {
        return cfg, fmt.Errorf("env: %w", err)
    }
    cfg.Dashboard.Coins = Unique(cfg.Dashboard.Coins)
    return cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c Config) Validate() error {
    var errs []error
    if len(c.Dashboard.Coins) == 0 {
        errs = append(errs, errors.New("at least one coin is required"))
    }
    for _, id := range c.Dashboard.Coins {
        if strings.TrimSpace(id) == "" || strings.ContainsAny(id, ", ") {
            errs = append(errs, fmt.Errorf("invalid coin id %q", id))
        }
    }
    if c.Dashboard.UpdateIntervalSec <= 0 {
        errs = append(errs, fmt.Errorf("update interval must be positive, got %d", c.Dashboard.UpdateIntervalSec))
    }
    if c.CoinGecko.RequestTimeoutSec <= 0 {
        errs = append(errs, fmt.Errorf("request timeout must be positive, got %d", c.CoinGecko.RequestTimeoutSec))
    }
    if c.CoinGecko.MinRequestIntervalSec < 0 {
        errs = append(errs, fmt.Errorf("min request interval must not be negative, got %d", c.CoinGecko.MinRequestIntervalSec))
    }
    if c.Dashboard.UpdateIntervalSec > 0 && c.CoinGecko.MinRequestIntervalSec > c.Dashboard.UpdateIntervalSec {
        errs = append(errs, fmt.Errorf("min request interval %ds exceeds update interval %ds", c.CoinGecko.MinRequestIntervalSec, c.Dashboard.UpdateIntervalSec))
    }
    if strings.TrimSpace(c.CoinGecko.BaseURL) == "" {
        errs = append(errs, errors.New("base url is required"))
    }
    if strings.TrimSpace(c.CoinGecko.Currency) == "" {
        errs = append(errs, errors.New("currency is required"))
    }
    return errors.Join(errs...)
}

// applyEnv overrides cfg from the environment. Out-of-range numbers are kept
// so that Validate reports them; text that is not an integer is an error.
func applyEnv(cfg *Config) error {
    if v := os.Getenv("COINS"); v != "" { cfg.Dashboard.Coins = SplitCSV(v) }
    if err := envInt("UPDATE_INTERVAL_SEC", &cfg.Dashboard.UpdateIntervalSec); err != nil { return err }
    if v := os.Getenv("LOG_FILE"); v != "" { cfg.Dashboard.LogFile = v }
    if v := os.Getenv("VERBOSE"); v != "" {
        switch strings.ToLower(v) {
        case "1","true","yes","y": cfg.Dashboard.Verbose = true
        case "0","false","no","n": cfg.Dashboard.Verbose = false
        }
    }
    if v := os.Getenv("COINGECKO_BASE_URL"); v != "" { cfg.CoinGecko.BaseURL = v }
    if v := os.Getenv("COINGECKO_API_KEY"); v != "" { cfg.CoinGecko.APIKey = v }
    if v := os.Getenv("VS_CURRENCY"); v != "" { cfg.CoinGecko.Currency = strings.ToLower(v) }
    if err := envInt("REQUEST_TIMEOUT_SEC", &cfg.CoinGecko.RequestTimeoutSec); err != nil { return err }
    if err := envInt("MIN_REQUEST_INTERVAL_SEC", &cfg.CoinGecko.MinRequestIntervalSec); err != nil { return err }
    return nil
}

func envInt(key string, dst *int) error {
    v := strings.TrimSpace(os.Getenv(key))
    if v == "" { return nil }
    x, err := strconv.Atoi(v)
    if err != nil { return fmt.Errorf("%s=%q is not an integer", key, v) }
    *dst = x
    return nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty entries.
func SplitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}

// Unique drops repeated ids, keeping the first occurrence and the original order.
func Unique(ids []string) []string {
    seen := make(map[string]struct{}, len(ids))
    out := make([]string, 0, len(ids))
    for _, id := range ids {
        if _, dup := seen[id]; dup { continue }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    return out
}
