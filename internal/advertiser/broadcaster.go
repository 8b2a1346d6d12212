package advertiser

import (
	"context"
	"sync"
	"time"
	"uribeacon/internal/config"
	"uribeacon/internal/rotation"
	"uribeacon/pkg/domain"
	"uribeacon/pkg/eddystone"
	"uribeacon/pkg/logger"
	"uribeacon/pkg/metrics"
	"uribeacon/pkg/urlcodec"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRetryDelay is how long Run waits after a failed refresh.
const DefaultRetryDelay = 5 * time.Second

// Options configure what a Broadcaster advertises.
type Options struct {
	// StaticURL is advertised unchanged when set. Otherwise Rotator is required.
	StaticURL string
	// Rotator derives the URL from the current time.
	Rotator *rotation.Rotator
	// TxPower is written into every Eddystone-URL frame.
	TxPower int8
	// RetryDelay is the wait after a failed refresh; DefaultRetryDelay when zero.
	RetryDelay time.Duration
	// Metrics is optional.
	Metrics *metrics.Beacon
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) (Options, error) {
	opts := Options{
		StaticURL: cfg.Beacon.StaticURL,
		TxPower:   cfg.Beacon.TxPower,
	}
	if opts.StaticURL != "" {
		return opts, nil
	}

	r, err := rotation.New(cfg.Beacon.BaseURL, cfg.Beacon.Secret, cfg.Beacon.RotationInterval)
	if err != nil {
		return Options{}, errors.Wrap(err, "could not create rotator")
	}
	opts.Rotator = r

	return opts, nil
}

// Broadcaster keeps the advertiser fed with the advertisement for the current
// time and lets other components watch it.
//
// Refresh builds the advertisement for now and, if its URL differs from the
// one on the air, hands it to the Advertiser. Only then does it become
// Current and get sent to subscribers. Subscribers get a one-slot channel;
// an update is dropped for a subscriber that has not consumed the previous
// one.
type Broadcaster struct {
	advertiser Advertiser
	codec      *urlcodec.Codec
	options    Options

	// refreshMu serializes Refresh so two callers never advertise concurrently.
	refreshMu sync.Mutex

	// mu protects current and subscribers.
	mu          sync.RWMutex
	current     *domain.Advertisement
	subscribers map[chan domain.Advertisement]struct{}
}

// New creates a Broadcaster. A static URL is encoded once here so that a URL
// that can never be advertised is reported at startup.
func New(advertiser Advertiser, codec *urlcodec.Codec, options Options) (*Broadcaster, error) {
	if options.StaticURL == "" && options.Rotator == nil {
		return nil, errors.New("either a static URL or a rotator is required")
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.RetryDelay <= 0 {
		options.RetryDelay = DefaultRetryDelay
	}

	b := &Broadcaster{
		advertiser:  advertiser,
		codec:       codec,
		options:     options,
		subscribers: make(map[chan domain.Advertisement]struct{}),
	}

	if options.StaticURL != "" {
		if _, err := b.Build(options.Now()); err != nil {
			return nil, errors.Wrapf(err, "static URL %q cannot be advertised", options.StaticURL)
		}
	}

	return b, nil
}

func (b *Broadcaster) urlAt(t time.Time) string {
	if b.options.StaticURL != "" {
		return b.options.StaticURL
	}

	return b.options.Rotator.URLAt(t)
}

// Build returns the advertisement for instant t without advertising it.
func (b *Broadcaster) Build(t time.Time) (domain.Advertisement, error) {
	url := b.urlAt(t)

	payload, err := b.codec.Encode(url)
	if err != nil {
		return domain.Advertisement{}, errors.Wrapf(err, "could not encode %q", url)
	}
	frame, err := eddystone.URLFrameFromPayload(payload, b.options.TxPower)
	if err != nil {
		return domain.Advertisement{}, errors.Wrapf(err, "could not frame %q", url)
	}
	data, err := eddystone.AdvertisingData(frame)
	if err != nil {
		return domain.Advertisement{}, errors.Wrapf(err, "could not build advertising data for %q", url)
	}

	ad := domain.Advertisement{
		ID:        domain.AdvertisementID(uuid.New()),
		URL:       url,
		Payload:   payload,
		Frame:     frame,
		Data:      data,
		TxPower:   b.options.TxPower,
		CreatedAt: t,
	}
	if r := b.options.Rotator; r != nil && b.options.StaticURL == "" {
		ad.Rotating = true
		ad.Window = r.Window(t)
		ad.NextRotation = r.NextRotation(t)
	}

	return ad, nil
}

// Refresh advertises the advertisement for the current time if its URL is not
// already on the air. It returns the advertisement now current and whether it
// changed.
func (b *Broadcaster) Refresh(ctx context.Context) (domain.Advertisement, bool, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	now := b.options.Now()
	if cur, ok := b.Current(); ok && cur.URL == b.urlAt(now) {
		return cur, false, nil
	}

	ad, err := b.Build(now)
	if err != nil {
		b.options.Metrics.Failed(ctx, err)

		return domain.Advertisement{}, false, err
	}
	if err := b.advertiser.Advertise(ctx, ad); err != nil {
		b.options.Metrics.Failed(ctx, err)

		return domain.Advertisement{}, false, errors.Wrap(err, "could not advertise")
	}

	b.mu.Lock()
	b.current = &ad
	for ch := range b.subscribers {
		select {
		case ch <- ad:
		default:
		}
	}
	b.mu.Unlock()

	b.options.Metrics.Rotated(ctx)
	logger.Info(ctx, "advertisement updated",
		zap.String("url", ad.URL),
		zap.Int("payloadBytes", len(ad.Payload)),
		zap.Int64("window", ad.Window))

	return ad, true, nil
}

// Run refreshes immediately and then at every rotation boundary until ctx is
// done, after which it stops the advertiser. A static URL is refreshed only
// until it is on the air.
func (b *Broadcaster) Run(ctx context.Context) error {
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := b.advertiser.Stop(stopCtx); err != nil {
			logger.Warn(ctx, "could not stop advertiser", zap.Error(err))
		}
	}()

	for {
		var wait time.Duration
		if _, _, err := b.Refresh(ctx); err != nil {
			logger.Error(ctx, "could not refresh advertisement", zap.Error(err))
			wait = b.options.RetryDelay
		} else {
			wait = b.untilNextRotation()
		}

		if wait < 0 {
			<-ctx.Done()

			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil
		case <-timer.C:
		}
	}
}

// untilNextRotation returns how long to sleep before the next refresh, or a
// negative duration when the URL never changes.
func (b *Broadcaster) untilNextRotation() time.Duration {
	if b.options.StaticURL != "" {
		return -1
	}

	now := b.options.Now()
	wait := b.options.Rotator.NextRotation(now).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}

	return wait
}

// Current returns the advertisement on the air, if any.
func (b *Broadcaster) Current() (domain.Advertisement, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.current == nil {
		return domain.Advertisement{}, false
	}

	return *b.current, true
}

// Subscribe returns a channel receiving every new advertisement, primed with
// the current one, and a function that ends the subscription and closes the
// channel.
func (b *Broadcaster) Subscribe() (<-chan domain.Advertisement, func()) {
	ch := make(chan domain.Advertisement, 1)

	b.mu.Lock()
	if b.current != nil {
		ch <- *b.current
	}
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
}
