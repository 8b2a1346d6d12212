// Package v1handler implements the /v1 HTTP API: encoding and decoding
// beacon URLs and watching the advertisement on the air.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"uribeacon/pkg/domain"
	"uribeacon/pkg/eddystone"
	"uribeacon/pkg/logger"
	"uribeacon/pkg/metrics"
	"uribeacon/pkg/serrors"
	"uribeacon/pkg/urlcodec"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MaxRequestBody bounds the JSON bodies the API reads.
const MaxRequestBody = 4 << 10

// Beacon is what the API needs from the broadcaster.
type Beacon interface {
	Current() (domain.Advertisement, bool)
	Subscribe() (<-chan domain.Advertisement, func())
}

// Deps are the collaborators of Handler. Beacon and Metrics may be nil.
type Deps struct {
	Codec   *urlcodec.Codec
	Beacon  Beacon
	Metrics *metrics.Codec
}

type Handler struct {
	deps     Deps
	upgrader websocket.Upgrader
}

func New(deps Deps) *Handler {
	if deps.Codec == nil {
		deps.Codec = urlcodec.Default
	}

	return &Handler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the API is public and read only; CORS allows every origin as well
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register mounts the v1 routes on mux under prefix, e.g. "/v1".
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/encode", h.Encode)
	mux.HandleFunc("POST "+prefix+"/decode", h.Decode)
	mux.HandleFunc("GET "+prefix+"/beacon", h.GetBeacon)
	mux.HandleFunc("GET "+prefix+"/beacon/stream", h.StreamBeacon)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string
	Message string
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

type kindInfo struct {
	status  int
	message string
}

//nolint: gochecknoglobals
var kinds = map[serrors.Kind]kindInfo{
	serrors.ErrBadRequest:  {http.StatusBadRequest, "bad request"},
	serrors.ErrNotFound:    {http.StatusNotFound, "resource not found"},
	serrors.ErrUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	serrors.ErrInternal:    {http.StatusInternalServerError, "internal error"},

	urlcodec.ErrEmpty:         {http.StatusBadRequest, "input is empty"},
	urlcodec.ErrUnknownScheme: {http.StatusBadRequest, "unknown scheme"},
	urlcodec.ErrMalformedUUID: {http.StatusBadRequest, "malformed UUID"},
	urlcodec.ErrInvalidLength: {http.StatusBadRequest, "invalid payload length"},

	eddystone.ErrTooLong:          {http.StatusBadRequest, "too long"},
	eddystone.ErrUnsupportedFrame: {http.StatusBadRequest, "unsupported frame type"},
	eddystone.ErrTruncated:        {http.StatusBadRequest, "truncated frame"},
	eddystone.ErrNoServiceData:    {http.StatusBadRequest, "no Eddystone service data"},
}

// NewError maps err to the reply sent to the client. Errors without a known
// kind, and INTERNAL ones, become 500 INTERNAL with a generic message; their
// text is only logged.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	k := serrors.KindOf(err)
	info, known := kinds[k]
	if !known || k == serrors.ErrInternal {
		logger.Error(ctx, "request failed", zap.Error(err))

		return &ErrorStatusCode{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorResponse{Code: serrors.ErrInternal.Error(), Message: "internal error"},
		}
	}
	if info.status >= http.StatusInternalServerError {
		logger.Warn(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err))
	}

	msg := info.message
	var se *serrors.Error
	if errors.As(err, &se) && se.Message() != "" {
		msg = se.Message()
	}

	return &ErrorStatusCode{
		StatusCode: info.status,
		Response:   ErrorResponse{Code: k.Error(), Message: msg},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)

	var e jx.Encoder
	EncodeError(&e, res.Response)
	writeJSON(w, res.StatusCode, e.Bytes())
}

// EncodeError writes res as {"code","message"}.
func EncodeError(e *jx.Encoder, res ErrorResponse) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(res.Code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
	})
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
