package eddystone

import (
	"encoding/binary"
	"uribeacon/pkg/serrors"
	"uribeacon/pkg/urlcodec"
)

// AD structure types used in an Eddystone advertisement.
const (
	adTypeFlags          byte = 0x01
	adTypeCompleteUUID16 byte = 0x03
	adTypeServiceData16  byte = 0x16

	// LE General Discoverable, BR/EDR not supported
	adFlags byte = 0x06
)

// AdvertisingData lays out frame as BLE advertising data: a flags structure,
// the complete 16-bit service UUID list and the Eddystone service data.
func AdvertisingData(frame []byte) ([]byte, error) {
	var uuid16 [2]byte
	binary.LittleEndian.PutUint16(uuid16[:], ServiceUUID16)

	data := make([]byte, 0, MaxAdvertisingData)
	data = append(data, 2, adTypeFlags, adFlags)
	data = append(data, 3, adTypeCompleteUUID16, uuid16[0], uuid16[1])
	data = append(data, byte(3+len(frame)), adTypeServiceData16, uuid16[0], uuid16[1]) //nolint: gosec
	data = append(data, frame...)

	if len(data) > MaxAdvertisingData {
		return nil, serrors.With(ErrTooLong, "advertising data is %d bytes, at most %d fit",
			len(data), MaxAdvertisingData)
	}

	return data, nil
}

// ParseAdvertisingData finds the Eddystone service data in data and decodes
// its URL frame with c.
func ParseAdvertisingData(c *urlcodec.Codec, data []byte) (URLFrame, error) {
	for i := 0; i < len(data); {
		length := int(data[i])
		if length == 0 {
			// zero length marks the end of significant data
			break
		}
		if i+1+length > len(data) {
			return URLFrame{}, serrors.With(ErrTruncated, "AD structure at %d claims %d bytes", i, length)
		}

		body := data[i+1 : i+1+length]
		if body[0] == adTypeServiceData16 && len(body) >= 3 &&
			binary.LittleEndian.Uint16(body[1:3]) == ServiceUUID16 {
			return DecodeURLFrame(c, body[3:])
		}
		i += 1 + length
	}

	return URLFrame{}, serrors.KindOnly(ErrNoServiceData)
}
