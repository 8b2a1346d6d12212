package v1handler

import (
	"encoding/hex"
	"io"
	"math"
	"net/http"
	"time"
	"uribeacon/pkg/eddystone"
	"uribeacon/pkg/metrics"
	"uribeacon/pkg/serrors"
	"uribeacon/pkg/urlcodec"

	"github.com/go-faster/jx"
)

// EncodeRequest is the body of POST /encode.
type EncodeRequest struct {
	URL     string
	TxPower int8
}

// EncodeResponse is the reply of POST /encode. Frame is nil when the payload
// does not fit an Eddystone-URL frame.
type EncodeResponse struct {
	URL     string
	Payload []byte
	Fits    bool
	Frame   []byte
}

// DecodeRequest is the body of POST /decode.
type DecodeRequest struct {
	Payload []byte
}

// DecodeResponse is the reply of POST /decode.
type DecodeResponse struct {
	URL    string
	Tokens []urlcodec.Token
}

func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read body")
	}
	if len(body) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "body is empty")
	}

	return jx.DecodeBytes(body), nil
}

// DecodeEncodeRequest parses {"url": "...", "txPower": -70}. txPower defaults
// to eddystone.DefaultTxPower.
func DecodeEncodeRequest(d *jx.Decoder) (EncodeRequest, error) {
	req := EncodeRequest{TxPower: eddystone.DefaultTxPower}
	var hasURL bool

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "url":
			s, err := d.Str()
			if err != nil {
				return serrors.Wrap(serrors.ErrBadRequest, err, "url must be a string")
			}
			req.URL, hasURL = s, true
		case "txPower":
			n, err := d.Int()
			if err != nil {
				return serrors.Wrap(serrors.ErrBadRequest, err, "txPower must be an integer")
			}
			if n < math.MinInt8 || n > math.MaxInt8 {
				return serrors.With(serrors.ErrBadRequest, "txPower %d is out of range [%d, %d]",
					n, math.MinInt8, math.MaxInt8)
			}
			req.TxPower = int8(n)
		default:
			return d.Skip() //nolint: wrapcheck
		}

		return nil
	})
	if err != nil {
		return EncodeRequest{}, asBadRequest(err)
	}
	if !hasURL {
		return EncodeRequest{}, serrors.With(serrors.ErrBadRequest, "url is required")
	}

	return req, nil
}

// DecodeDecodeRequest parses {"payload": "<hex>"}.
func DecodeDecodeRequest(d *jx.Decoder) (DecodeRequest, error) {
	var (
		req        DecodeRequest
		hasPayload bool
	)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "payload" {
			return d.Skip() //nolint: wrapcheck
		}
		s, err := d.Str()
		if err != nil {
			return serrors.Wrap(serrors.ErrBadRequest, err, "payload must be a string")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return serrors.Wrap(serrors.ErrBadRequest, err, "payload must be hex")
		}
		req.Payload, hasPayload = b, true

		return nil
	})
	if err != nil {
		return DecodeRequest{}, asBadRequest(err)
	}
	if !hasPayload {
		return DecodeRequest{}, serrors.With(serrors.ErrBadRequest, "payload is required")
	}

	return req, nil
}

// asBadRequest keeps errors that already carry a kind and marks json syntax
// errors as the client's fault.
func asBadRequest(err error) error {
	if serrors.KindOf(err) != nil {
		return err
	}

	return serrors.Wrap(serrors.ErrBadRequest, err, "invalid json")
}

// Encode handles POST /encode.
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	req, err := DecodeEncodeRequest(d)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	start := time.Now()
	payload, err := h.deps.Codec.Encode(req.URL)
	h.deps.Metrics.Record(r.Context(), metrics.OpEncode, len(payload), time.Since(start), err)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	res := EncodeResponse{URL: req.URL, Payload: payload}
	if frame, err := eddystone.URLFrameFromPayload(payload, req.TxPower); err == nil {
		res.Fits, res.Frame = true, frame
	}

	var e jx.Encoder
	WriteEncodeResponse(&e, res)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// WriteEncodeResponse writes res as JSON.
func WriteEncodeResponse(e *jx.Encoder, res EncodeResponse) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("url", func(e *jx.Encoder) { e.Str(res.URL) })
		e.Field("payload", func(e *jx.Encoder) { e.Str(hex.EncodeToString(res.Payload)) })
		e.Field("length", func(e *jx.Encoder) { e.Int(len(res.Payload)) })
		e.Field("fits", func(e *jx.Encoder) { e.Bool(res.Fits) })
		if res.Fits {
			e.Field("frame", func(e *jx.Encoder) { e.Str(hex.EncodeToString(res.Frame)) })
		}
	})
}

// Decode handles POST /decode.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	req, err := DecodeDecodeRequest(d)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	start := time.Now()
	tokens, err := h.deps.Codec.Tokenize(req.Payload)
	h.deps.Metrics.Record(r.Context(), metrics.OpDecode, len(req.Payload), time.Since(start), err)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	res := DecodeResponse{Tokens: tokens}
	for _, t := range tokens {
		res.URL += t.Text
	}

	var e jx.Encoder
	WriteDecodeResponse(&e, res)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// WriteDecodeResponse writes res as JSON.
func WriteDecodeResponse(e *jx.Encoder, res DecodeResponse) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("url", func(e *jx.Encoder) { e.Str(res.URL) })
		e.Field("tokens", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range res.Tokens {
					e.Obj(func(e *jx.Encoder) {
						e.Field("offset", func(e *jx.Encoder) { e.Int(t.Offset) })
						e.Field("kind", func(e *jx.Encoder) { e.Str(string(t.Kind)) })
						e.Field("text", func(e *jx.Encoder) { e.Str(t.Text) })
						e.Field("raw", func(e *jx.Encoder) { e.Str(hex.EncodeToString(t.Raw)) })
					})
				}
			})
		})
	})
}
