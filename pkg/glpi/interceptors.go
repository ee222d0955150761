package glpi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestInterceptor is called after headers are composed and before the
// request is sent. An error aborts the call with a TransportError outcome.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called once the transport returned. resp is nil
// when err is set. Errors are logged and never change the outcome.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response, err error) error

// InterceptorChain manages a chain of interceptors. Interceptors must be
// added before the chain is handed to a client.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors and joins
// their errors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response, sendErr error) error {
	if c == nil {
		return nil
	}

	var errs []error

	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp, sendErr)
		if err != nil {
			errs = append(errs, fmt.Errorf("response interceptor failed: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ClassifyExchange reports the outcome kind a transport result maps to,
// judged on status alone.
func ClassifyExchange(resp *Response, err error) OutcomeKind {
	switch {
	case err != nil || resp == nil:
		return OutcomeTransportError
	case resp.IsSuccess():
		return OutcomeSuccess
	default:
		return OutcomeAPIError
	}
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method":   req.Method,
			"endpoint": req.Endpoint,
			"path":     req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response, err error) error {
		kind := ClassifyExchange(resp, err)
		fields := map[string]interface{}{
			"method":   req.Method,
			"endpoint": req.Endpoint,
			"outcome":  kind.String(),
		}

		if resp != nil {
			fields["status_code"] = resp.StatusCode
		}

		switch kind {
		case OutcomeTransportError:
			fields["error"] = err
			logger.Error("API Transport Error", fields)
		case OutcomeAPIError:
			logger.Warn("API Response Error", fields)
		default:
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RateLimitInterceptor implements client-side rate limiting. The refill
// goroutine stops when ctx is done. Rates below one are raised to one.
func RateLimitInterceptor(ctx context.Context, requestsPerSecond int) RequestInterceptor {
	requestsPerSecond = max(requestsPerSecond, 1)

	bucket := make(chan struct{}, requestsPerSecond)

	for range requestsPerSecond {
		bucket <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case bucket <- struct{}{}:
				default:
					// Bucket is full
				}
			}
		}
	}()

	return func(reqCtx context.Context, req *Request) error {
		select {
		case <-bucket:
			return nil
		case <-reqCtx.Done():
			return reqCtx.Err()
		}
	}
}

const metadataStartTime = "start_time"

// PrometheusMetrics records per-endpoint call counts and latencies.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	metrics := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of GLPI API calls by endpoint and outcome",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Duration of GLPI API calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}

	for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration} {
		err := reg.Register(collector)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return metrics, nil
}

// Attach adds the metrics interceptors to chain.
func (m *PrometheusMetrics) Attach(chain *InterceptorChain) {
	chain.AddRequestInterceptor(m.RequestInterceptor())
	chain.AddResponseInterceptor(m.ResponseInterceptor())
}

// RequestInterceptor records the request start time.
func (m *PrometheusMetrics) RequestInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return nil
	}
}

// ResponseInterceptor counts the call and observes its latency.
func (m *PrometheusMetrics) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response, err error) error {
		kind := ClassifyExchange(resp, err)
		m.requests.WithLabelValues(req.Method, req.Endpoint, kind.String()).Inc()

		if startTime, ok := req.Metadata[metadataStartTime].(time.Time); ok {
			m.duration.WithLabelValues(req.Method, req.Endpoint).Observe(time.Since(startTime).Seconds())
		}

		return nil
	}
}
