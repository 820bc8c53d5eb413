package ratelimit

import (
    "context"
    "sync"
    "time"

    "github.com/sirupsen/logrus"

    "cryptodash/internal/provider"
)

// MinInterval wraps a provider so that request starts are at least gap apart.
// Each caller reserves the next free slot before waiting, so concurrent callers
// queue behind each other instead of firing together once the gap elapses.
//
// The dashboard sleeps its update interval between cycles; a gap no larger
// than that interval never delays a poll (config.Validate rejects larger ones).
type MinInterval struct {
    provider.Provider
    gap    time.Duration
    logger logrus.FieldLogger

    mu   sync.Mutex
    next time.Time
}

func New(p provider.Provider, gap time.Duration, logger logrus.FieldLogger) *MinInterval {
    if logger == nil {
        logger = logrus.StandardLogger()
    }
    return &MinInterval{Provider: p, gap: gap, logger: logger}
}

func (m *MinInterval) Gap() time.Duration { return m.gap }

// Fetch waits for its slot and delegates. A canceled wait returns ctx.Err()
// without reaching the wrapped provider.
func (m *MinInterval) Fetch(ctx context.Context, ids []string) (provider.QuoteSet, error) {
    if err := m.reserve(ctx); err != nil {
        return nil, err
    }
    return m.Provider.Fetch(ctx, ids)
}

func (m *MinInterval) reserve(ctx context.Context) error {
    if m.gap <= 0 {
        return ctx.Err()
    }
    m.mu.Lock()
    start := time.Now()
    if m.next.After(start) {
        start = m.next
    }
    m.next = start.Add(m.gap)
    m.mu.Unlock()

    delay := time.Until(start)
    if delay <= 0 {
        return ctx.Err()
    }
    m.logger.WithField("delay", delay.Round(time.Millisecond)).Debug("spacing price request")
    t := time.NewTimer(delay)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}
