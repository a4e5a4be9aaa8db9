package httputil

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"adscript/internal/metrics"
)

const DefaultTimeout = 60 * time.Second

type ClientConfig struct {
	Provider  string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// NewClient returns the HTTP client handed to a provider SDK. Requests are
// never retried; every attempt is logged and counted.
func NewClient(config ClientConfig) *http.Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}

	return &http.Client{
		Timeout: config.Timeout,
		Transport: &instrumentedTransport{
			provider: config.Provider,
			base:     config.Transport,
		},
	}
}

type instrumentedTransport struct {
	provider string
	base     http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	code := statusLabel(resp, err)
	metrics.HTTPRequestsTotal.WithLabelValues(t.provider, code).Inc()
	slog.Debug("Provider HTTP call",
		"provider", t.provider,
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", code,
		"duration", time.Since(start),
	)

	return resp, err
}

func statusLabel(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode)
}
