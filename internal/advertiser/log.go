package advertiser

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"
	"uribeacon/pkg/domain"
)

// LogAdvertiser writes advertisements to a logger instead of a radio.
type LogAdvertiser struct {
	log *slog.Logger

	mu     sync.Mutex
	active bool
}

// NewLogAdvertiser returns an Advertiser logging to log.
func NewLogAdvertiser(log *slog.Logger) *LogAdvertiser {
	return &LogAdvertiser{log: log}
}

// Advertise logs ad as the advertisement now on the air.
func (l *LogAdvertiser) Advertise(ctx context.Context, ad domain.Advertisement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		l.log.DebugContext(ctx, "replacing advertisement")
	}
	l.active = true

	l.log.InfoContext(ctx, "advertising",
		slog.String("id", ad.ID.String()),
		slog.String("url", ad.URL),
		slog.String("payload", hex.EncodeToString(ad.Payload)),
		slog.String("data", hex.EncodeToString(ad.Data)),
		slog.Int("txPower", int(ad.TxPower)),
	)

	return nil
}

// Stop logs the end of advertising.
func (l *LogAdvertiser) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}
	l.active = false
	l.log.InfoContext(ctx, "advertising stopped")

	return nil
}
