package eddystone_test

import (
	"testing"
	"uribeacon/pkg/eddystone"
	"uribeacon/pkg/urlcodec"

	"github.com/stretchr/testify/require"
)

func TestServiceUUID(t *testing.T) {
	require.Equal(t, "0000feaa-0000-1000-8000-00805f9b34fb", eddystone.ServiceUUID.String())
}

func TestEncodeURLFrame(t *testing.T) {
	frame, err := eddystone.EncodeURLFrame(urlcodec.Default, "http://www.eff.org", eddystone.DefaultTxPower)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0xba, 0x00, 'e', 'f', 'f', 0x08}, frame)
}

func TestEncodeURLFrameErrors(t *testing.T) {
	_, err := eddystone.EncodeURLFrame(urlcodec.Default, "http://www.example-long-domain.com/", 0)
	require.ErrorIs(t, err, eddystone.ErrTooLong)

	_, err = eddystone.EncodeURLFrame(urlcodec.Default, "ftp://example.com", 0)
	require.ErrorIs(t, err, urlcodec.ErrUnknownScheme)

	_, err = eddystone.EncodeURLFrame(urlcodec.Default, "", 0)
	require.ErrorIs(t, err, urlcodec.ErrEmpty)
}

func TestDecodeURLFrame(t *testing.T) {
	got, err := eddystone.DecodeURLFrame(urlcodec.Default, []byte{0x10, 0xeb, 0x03, 'g', 'o', 'o', '.', 'g', 'l'})
	require.NoError(t, err)
	require.Equal(t, int8(-21), got.TxPower)
	require.Equal(t, "https://goo.gl", got.URL)
	require.Equal(t, []byte{0x03, 'g', 'o', 'o', '.', 'g', 'l'}, got.Payload)
}

func TestDecodeURLFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		kind  error
	}{
		{name: "empty", frame: nil, kind: eddystone.ErrTruncated},
		{name: "uid frame", frame: []byte{0x00, 0xba, 1, 2, 3}, kind: eddystone.ErrUnsupportedFrame},
		{name: "header only", frame: []byte{0x10, 0xba}, kind: eddystone.ErrTruncated},
		{name: "bad scheme", frame: []byte{0x10, 0xba, 0x09}, kind: urlcodec.ErrUnknownScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eddystone.DecodeURLFrame(urlcodec.Default, tt.frame)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAdvertisingDataFitsLargestPayload(t *testing.T) {
	// 1 scheme byte + 17 literals
	url := "https://abcdefghijklmnopq"
	frame, err := eddystone.EncodeURLFrame(urlcodec.Default, url, eddystone.DefaultTxPower)
	require.NoError(t, err)
	require.Len(t, frame, 20)

	data, err := eddystone.AdvertisingData(frame)
	require.NoError(t, err)
	require.Len(t, data, eddystone.MaxAdvertisingData)
	require.Equal(t, []byte{0x02, 0x01, 0x06, 0x03, 0x03, 0xaa, 0xfe, 0x17, 0x16, 0xaa, 0xfe}, data[:11])
	require.Equal(t, frame, data[11:])

	parsed, err := eddystone.ParseAdvertisingData(urlcodec.Default, data)
	require.NoError(t, err)
	require.Equal(t, url, parsed.URL)
	require.Equal(t, eddystone.DefaultTxPower, parsed.TxPower)
}

func TestAdvertisingDataTooLong(t *testing.T) {
	frame := make([]byte, 21)
	frame[0] = eddystone.FrameTypeURL

	_, err := eddystone.AdvertisingData(frame)
	require.ErrorIs(t, err, eddystone.ErrTooLong)
}

func TestParseAdvertisingData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
		kind error
	}{
		{
			name: "other structures first",
			data: []byte{
				0x02, 0x01, 0x06,
				0x05, 0x09, 'n', 'a', 'm', 'e',
				0x0a, 0x16, 0xaa, 0xfe, 0x10, 0x00, 0x00, 'e', 'f', 'f', 0x08,
			},
			want: "http://www.eff.org",
		},
		{
			name: "other service data is skipped",
			data: []byte{
				0x04, 0x16, 0x0f, 0x18, 0x64,
				0x06, 0x16, 0xaa, 0xfe, 0x10, 0x00, 0x03,
			},
			want: "https://",
		},
		{
			name: "zero length terminates",
			data: []byte{0x02, 0x01, 0x06, 0x00, 0x06, 0x16, 0xaa, 0xfe, 0x10, 0x00, 0x03},
			kind: eddystone.ErrNoServiceData,
		},
		{
			name: "truncated structure",
			data: []byte{0x02, 0x01, 0x06, 0x09, 0x16, 0xaa, 0xfe},
			kind: eddystone.ErrTruncated,
		},
		{
			name: "empty",
			data: nil,
			kind: eddystone.ErrNoServiceData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eddystone.ParseAdvertisingData(urlcodec.Default, tt.data)
			if tt.kind != nil {
				require.ErrorIs(t, err, tt.kind)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.URL)
		})
	}
}
