package rotation_test

import (
	"testing"
	"time"
	"uribeacon/internal/rotation"
	"uribeacon/pkg/urlcodec"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		secret   string
		interval time.Duration
		ok       bool
	}{
		{name: "valid", base: "http://tiny.cc/C9/", secret: "locomoco", interval: time.Minute, ok: true},
		{name: "empty base", base: "", secret: "locomoco", interval: time.Minute},
		{name: "empty secret", base: "http://tiny.cc/C9/", secret: "", interval: time.Minute},
		{name: "sub-millisecond interval", base: "http://tiny.cc/C9/", secret: "s", interval: time.Microsecond},
		{name: "negative interval", base: "http://tiny.cc/C9/", secret: "s", interval: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := rotation.New(tt.base, tt.secret, tt.interval)
			if tt.ok {
				require.NoError(t, err)
				require.Equal(t, tt.interval, r.Interval())

				return
			}
			require.Error(t, err)
			require.Nil(t, r)
		})
	}
}

func TestToken(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		interval time.Duration
		millis   int64
		window   int64
		token    string
	}{
		{name: "epoch", secret: "locomoco", interval: time.Minute, millis: 0, window: 0, token: "ZDg1Z"},
		{name: "end of first window", secret: "locomoco", interval: time.Minute, millis: 59999, window: 0, token: "ZDg1Z"},
		{name: "second window", secret: "locomoco", interval: time.Minute, millis: 60000, window: 1, token: "ZDBkM"},
		{name: "recent", secret: "locomoco", interval: time.Minute, millis: 1700000000000, window: 28333333, token: "ZDJmY"},
		{name: "next window", secret: "locomoco", interval: time.Minute, millis: 1700000059999, window: 28333334, token: "NDhmZ"},
		{name: "other secret", secret: "other", interval: time.Minute, millis: 1700000000000, window: 28333333, token: "OTg2Z"},
		{name: "five minutes", secret: "locomoco", interval: 5 * time.Minute, millis: 1700000000000, window: 5666666, token: "ZjUyN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := rotation.New("http://tiny.cc/C9/", tt.secret, tt.interval)
			require.NoError(t, err)

			at := time.UnixMilli(tt.millis)
			require.Equal(t, tt.window, r.Window(at))
			require.Equal(t, tt.token, r.Token(at))
			require.Equal(t, "http://tiny.cc/C9/"+tt.token, r.URLAt(at))
		})
	}
}

func TestNextRotation(t *testing.T) {
	r, err := rotation.New("http://tiny.cc/C9/", "locomoco", time.Minute)
	require.NoError(t, err)

	at := time.UnixMilli(1700000000000)
	next := r.NextRotation(at)
	require.Equal(t, int64(1700000040000), next.UnixMilli())
	require.Equal(t, r.Window(at)+1, r.Window(next))
	require.Equal(t, r.Window(at), r.Window(next.Add(-time.Millisecond)))
}

func TestRotatedURLFitsBeacon(t *testing.T) {
	r, err := rotation.New("http://tiny.cc/C9/", "locomoco", time.Minute)
	require.NoError(t, err)

	enc, err := urlcodec.Encode(r.URLAt(time.UnixMilli(1700000000000)))
	require.NoError(t, err)
	require.Equal(t, append([]byte{0x02}, "tiny.cc/C9/ZDJmY"...), enc)
	require.LessOrEqual(t, len(enc), 18)
}
