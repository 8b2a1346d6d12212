// Package metrics holds the OpenTelemetry instruments of the service. Meters
// come from an SDK provider whose reader is the Prometheus exporter, so every
// instrument shows up on the regular /metrics endpoint.
package metrics

import (
	"context"
	"time"
	"uribeacon/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1} //nolint: gochecknoglobals

// PayloadBuckets are histogram buckets for encoded payload sizes in bytes.
var PayloadBuckets = []float64{1, 4, 8, 12, 16, 17, 18, 24, 32, 64} //nolint: gochecknoglobals

const meterName = "uribeacon"

// NewMeterProvider returns a meter provider exporting to reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, errors.Wrap(err, "could not create otel prometheus exporter")
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Operation names recorded by Codec.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// Codec records encode and decode calls.
type Codec struct {
	operations metric.Int64Counter
	size       metric.Int64Histogram
	duration   metric.Float64Histogram
}

// NewCodec creates the codec instruments on mp.
func NewCodec(mp metric.MeterProvider) (*Codec, error) {
	meter := mp.Meter(meterName)

	operations, err := meter.Int64Counter("urlcodec.operations",
		metric.WithDescription("Encode and decode calls by result"))
	if err != nil {
		return nil, errors.Wrap(err, "could not create operations counter")
	}
	size, err := meter.Int64Histogram("urlcodec.payload.size",
		metric.WithDescription("Size of successfully encoded or decoded payloads"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(PayloadBuckets...))
	if err != nil {
		return nil, errors.Wrap(err, "could not create payload size histogram")
	}
	duration, err := meter.Float64Histogram("urlcodec.duration",
		metric.WithDescription("Time spent in the codec"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, errors.Wrap(err, "could not create duration histogram")
	}

	return &Codec{operations: operations, size: size, duration: duration}, nil
}

// Record records one codec call. payloadSize is only recorded on success.
func (c *Codec) Record(ctx context.Context, op string, payloadSize int, took time.Duration, err error) {
	if c == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("op", op), attribute.String("result", Result(err)))
	c.operations.Add(ctx, 1, attrs)
	c.duration.Record(ctx, took.Seconds(), attrs)
	if err == nil {
		c.size.Record(ctx, int64(payloadSize), metric.WithAttributes(attribute.String("op", op)))
	}
}

// Result names the outcome of a call: "ok", the semantic kind of err, or
// "error" for errors without a kind.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if k := serrors.KindOf(err); k != nil {
		return k.Error()
	}

	return "error"
}

// Beacon records broadcaster activity.
type Beacon struct {
	rotations metric.Int64Counter
	failures  metric.Int64Counter
}

// NewBeacon creates the broadcaster instruments on mp.
func NewBeacon(mp metric.MeterProvider) (*Beacon, error) {
	meter := mp.Meter(meterName)

	rotations, err := meter.Int64Counter("beacon.rotations",
		metric.WithDescription("Advertisements handed to the advertiser"))
	if err != nil {
		return nil, errors.Wrap(err, "could not create rotations counter")
	}
	failures, err := meter.Int64Counter("beacon.failures",
		metric.WithDescription("Advertisements that could not be built or advertised"))
	if err != nil {
		return nil, errors.Wrap(err, "could not create failures counter")
	}

	return &Beacon{rotations: rotations, failures: failures}, nil
}

// Rotated records a successful advertisement.
func (b *Beacon) Rotated(ctx context.Context) {
	if b == nil {
		return
	}
	b.rotations.Add(ctx, 1)
}

// Failed records a failed advertisement.
func (b *Beacon) Failed(ctx context.Context, err error) {
	if b == nil {
		return
	}
	b.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("result", Result(err))))
}
