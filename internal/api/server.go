// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the URI beacon service.
package api

import (
	_ "embed"
	"net/http"
	"time"
	"uribeacon/internal/api/handler/v1handler"
	"uribeacon/internal/config"
	"uribeacon/pkg/controller"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// timeoutBody is sent by http.TimeoutHandler when a request runs past RequestTimeout.
const timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`

// Options holds configuration for the HTTP server.
// It is typically created from a config.Config via NewOptions.
// Zero durations mean no timeout, as in net/http.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is applied via http.TimeoutHandler to every route except
	// the websocket stream and pprof.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// EnablePprof mounts controller.PprofMux under controller.PprofPath.
	EnablePprof bool
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		EnablePprof:       cfg.HTTP.EnablePprof,
	}
}

type Deps struct {
	v1handler.Deps

	// Gatherer backs the metrics endpoint; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

// NewHandler returns the root handler of the service. It serves:
// - Prometheus metrics (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 API routes
// - pprof endpoints when enabled
// Everything is wrapped with CORS and logging middlewares; all but the
// websocket stream and pprof are bounded by RequestTimeout.
func NewHandler(deps Deps, opts Options) http.Handler {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	v1 := v1handler.New(deps.Deps)

	mux := http.NewServeMux()

	// prometheus metrics server
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"URI Beacon Service",
		"/specs/v1.yaml",
		"/v1/docs/",
	))
	// v1 api
	v1.Register(mux, "/v1")

	var timed http.Handler = mux
	if opts.RequestTimeout > 0 {
		timed = http.TimeoutHandler(mux, opts.RequestTimeout, timeoutBody)
	}

	// long-lived routes bypass the timeout
	root := http.NewServeMux()
	root.Handle("/", timed)
	root.HandleFunc("GET /v1/beacon/stream", v1.StreamBeacon)
	if opts.EnablePprof {
		root.Handle(controller.PprofPath, controller.PprofMux())
	}

	// cors
	handler := controller.WithCORS(root)

	// logger
	return controller.WithLogger(handler)
}

// NewServer wires up and returns a configured *http.Server serving NewHandler.
func NewServer(deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
