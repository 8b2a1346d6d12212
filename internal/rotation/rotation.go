// Package rotation derives short-lived beacon URLs from the current time so a
// URL seen on the air stops working after its window passes.
package rotation

import (
	"crypto/sha1" //nolint: gosec
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// TokenLength is the number of characters appended to the base URL.
const TokenLength = 5

// Rotator builds the URL for a given instant as base + token, where the token
// changes every interval.
type Rotator struct {
	base     string
	secret   string
	interval time.Duration
}

// New creates a Rotator. interval is truncated to whole milliseconds.
func New(base, secret string, interval time.Duration) (*Rotator, error) {
	if base == "" {
		return nil, errors.New("base URL is empty")
	}
	if secret == "" {
		return nil, errors.New("secret is empty")
	}
	if interval < time.Millisecond {
		return nil, errors.Errorf("interval %s is shorter than 1ms", interval)
	}

	return &Rotator{
		base:     base,
		secret:   secret,
		interval: interval.Truncate(time.Millisecond),
	}, nil
}

// Interval returns the rotation interval.
func (r *Rotator) Interval() time.Duration { return r.interval }

// Window returns the index of the rotation window t falls in, counted from
// the Unix epoch.
func (r *Rotator) Window(t time.Time) int64 {
	return t.UnixMilli() / r.interval.Milliseconds()
}

// NextRotation returns the start of the window after the one t falls in.
func (r *Rotator) NextRotation(t time.Time) time.Time {
	return time.UnixMilli((r.Window(t) + 1) * r.interval.Milliseconds())
}

// Token returns the first TokenLength characters of the unpadded base64 form
// of hex(sha1(secret + window)).
func (r *Rotator) Token(t time.Time) string {
	sum := sha1.Sum([]byte(r.secret + strconv.FormatInt(r.Window(t), 10))) //nolint: gosec
	encoded := base64.RawStdEncoding.EncodeToString([]byte(hex.EncodeToString(sum[:])))

	return encoded[:TokenLength]
}

// URLAt returns the URL to advertise at t.
func (r *Rotator) URLAt(t time.Time) string {
	return r.base + r.Token(t)
}
