// Package eddystone wraps urlcodec payloads into Eddystone-URL frames and the
// BLE advertising data that carries them.
package eddystone

import (
	"uribeacon/pkg/serrors"
	"uribeacon/pkg/urlcodec"

	"github.com/google/uuid"
)

const (
	// ServiceUUID16 is the 16-bit Eddystone service UUID.
	ServiceUUID16 uint16 = 0xFEAA
	// FrameTypeURL is the first byte of an Eddystone-URL frame.
	FrameTypeURL byte = 0x10
	// DefaultTxPower is the calibrated tx power at 0 m, in dBm.
	DefaultTxPower int8 = -70
	// MaxURLPayload is the largest encoded URL an advertisement has room for.
	MaxURLPayload = 18
	// MaxAdvertisingData is the size of a legacy BLE advertising PDU payload.
	MaxAdvertisingData = 31

	urlFrameHeader = 2
)

// ServiceUUID is ServiceUUID16 expanded onto the Bluetooth base UUID.
var ServiceUUID = uuid.MustParse("0000feaa-0000-1000-8000-00805f9b34fb") //nolint: gochecknoglobals

var (
	// ErrTooLong is returned when a payload does not fit its container.
	ErrTooLong = serrors.NewKind("TOO_LONG")
	// ErrUnsupportedFrame is returned for Eddystone frames other than URL frames.
	ErrUnsupportedFrame = serrors.NewKind("UNSUPPORTED_FRAME")
	// ErrTruncated is returned when a frame or AD structure is shorter than its header says.
	ErrTruncated = serrors.NewKind("TRUNCATED")
	// ErrNoServiceData is returned when advertising data has no Eddystone service data.
	ErrNoServiceData = serrors.NewKind("NO_SERVICE_DATA")
)

// URLFrame is a decoded Eddystone-URL frame.
type URLFrame struct {
	TxPower int8
	URL     string
	Payload []byte
}

// EncodeURLFrame encodes url with c and prefixes it with the URL frame header.
func EncodeURLFrame(c *urlcodec.Codec, url string, txPower int8) ([]byte, error) {
	payload, err := c.Encode(url)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return URLFrameFromPayload(payload, txPower)
}

// URLFrameFromPayload prefixes an already encoded payload with the URL frame header.
func URLFrameFromPayload(payload []byte, txPower int8) ([]byte, error) {
	if len(payload) > MaxURLPayload {
		return nil, serrors.With(ErrTooLong, "encoded URL is %d bytes, at most %d fit", len(payload), MaxURLPayload)
	}

	frame := make([]byte, 0, urlFrameHeader+len(payload))
	frame = append(frame, FrameTypeURL, byte(txPower))

	return append(frame, payload...), nil
}

// DecodeURLFrame parses an Eddystone-URL frame and decodes its URL with c.
func DecodeURLFrame(c *urlcodec.Codec, frame []byte) (URLFrame, error) {
	if len(frame) == 0 {
		return URLFrame{}, serrors.With(ErrTruncated, "empty frame")
	}
	if frame[0] != FrameTypeURL {
		return URLFrame{}, serrors.With(ErrUnsupportedFrame, "frame type 0x%02x", frame[0])
	}
	if len(frame) <= urlFrameHeader {
		return URLFrame{}, serrors.With(ErrTruncated, "URL frame of %d bytes carries no URL", len(frame))
	}

	payload := frame[urlFrameHeader:]
	url, err := c.Decode(payload)
	if err != nil {
		return URLFrame{}, err //nolint: wrapcheck
	}

	return URLFrame{
		TxPower: int8(frame[1]), //nolint: gosec
		URL:     url,
		Payload: payload,
	}, nil
}
