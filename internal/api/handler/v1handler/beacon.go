package v1handler

import (
	"context"
	"encoding/hex"
	"net/http"
	"time"
	"uribeacon/pkg/domain"
	"uribeacon/pkg/logger"
	"uribeacon/pkg/serrors"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamWriteTimeout = 10 * time.Second
	// streamPongWait is how long a stream survives without a pong.
	streamPongWait = 60 * time.Second
	// streamPingInterval must be shorter than streamPongWait.
	streamPingInterval = streamPongWait * 9 / 10
)

// WriteAdvertisement writes ad as JSON. Byte fields are hex strings.
func WriteAdvertisement(e *jx.Encoder, ad domain.Advertisement) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(ad.ID.String()) })
		e.Field("url", func(e *jx.Encoder) { e.Str(ad.URL) })
		e.Field("payload", func(e *jx.Encoder) { e.Str(hex.EncodeToString(ad.Payload)) })
		e.Field("frame", func(e *jx.Encoder) { e.Str(hex.EncodeToString(ad.Frame)) })
		e.Field("data", func(e *jx.Encoder) { e.Str(hex.EncodeToString(ad.Data)) })
		e.Field("txPower", func(e *jx.Encoder) { e.Int(int(ad.TxPower)) })
		e.Field("rotating", func(e *jx.Encoder) { e.Bool(ad.Rotating) })
		if ad.Rotating {
			e.Field("window", func(e *jx.Encoder) { e.Int64(ad.Window) })
			e.Field("nextRotation", func(e *jx.Encoder) { e.Str(ad.NextRotation.UTC().Format(time.RFC3339)) })
		}
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(ad.CreatedAt.UTC().Format(time.RFC3339Nano)) })
	})
}

func (h *Handler) beacon() (Beacon, error) {
	if h.deps.Beacon == nil {
		return nil, serrors.With(serrors.ErrUnavailable, "broadcaster is not running")
	}

	return h.deps.Beacon, nil
}

// GetBeacon handles GET /beacon.
func (h *Handler) GetBeacon(w http.ResponseWriter, r *http.Request) {
	b, err := h.beacon()
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	ad, ok := b.Current()
	if !ok {
		h.writeError(w, r, serrors.With(serrors.ErrNotFound, "nothing advertised yet"))

		return
	}

	var e jx.Encoder
	WriteAdvertisement(&e, ad)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// StreamBeacon handles GET /beacon/stream. It upgrades to a websocket and
// sends the current advertisement and every later one as a text message.
// Messages from the client are read and discarded.
func (h *Handler) StreamBeacon(w http.ResponseWriter, r *http.Request) {
	b, err := h.beacon()
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.Debug(r.Context(), "websocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	updates, unsubscribe := b.Subscribe()
	defer unsubscribe()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))

			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case ad, ok := <-updates:
			if !ok {
				return
			}
			var e jx.Encoder
			WriteAdvertisement(&e, ad)
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, e.Bytes()); err != nil {
				logger.Debug(ctx, "websocket write failed", zap.Error(err))

				return
			}
		}
	}
}
