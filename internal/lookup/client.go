// Package lookup implements the external bibliographic services the
// metadata resolver falls back through.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/persistorai/papergraph/internal/metrics"
)

// ErrServiceUnavailable wraps transport failures, 5xx and 429 responses,
// and calls rejected by an open circuit breaker.
var ErrServiceUnavailable = errors.New("lookup service unavailable")

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20 // 10 MB
	userAgent      = "papergraph/1.0"
)

// Circuit breaker configuration.
const (
	cbMaxRequests  = 1
	cbInterval     = 60 * time.Second
	cbTimeout      = 30 * time.Second
	cbMinRequests  = 5
	cbFailureRatio = 0.6
)

// Lookup outcomes recorded in metrics.
const (
	outcomeFound       = "found"
	outcomeAbsent      = "absent"
	outcomeError       = "error"
	outcomeBreakerOpen = "breaker_open"
)

// response is a buffered upstream reply.
type response struct {
	status int
	body   []byte
}

// service is the shared HTTP plumbing for one upstream: a client, a
// circuit breaker and metrics under a stable name.
type service struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

func newService(name string, client *http.Client, log *logrus.Logger) *service {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	s := &service{name: name, client: client, log: log}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cbMaxRequests,
		Interval:    cbInterval,
		Timeout:     cbTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cbMinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cbFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.WithFields(logrus.Fields{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("lookup circuit breaker state changed")
		},
		// Cancelled callers say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return s
}

// get performs a GET through the breaker. Non-2xx statuses other than 429
// and 5xx are returned as a response for the caller to interpret.
func (s *service) get(ctx context.Context, url string, header http.Header) (*response, error) {
	start := time.Now()
	defer func() {
		metrics.LookupDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.do(ctx, url, header)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.record(outcomeBreakerOpen)
			return nil, fmt.Errorf("%s: %w: %w", s.name, ErrServiceUnavailable, err)
		}

		s.record(outcomeError)

		return nil, err
	}

	return v.(*response), nil
}

func (s *service) do(ctx context.Context, url string, header http.Header) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", s.name, err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.name, ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return nil, fmt.Errorf("%s: %w: status %d", s.name, ErrServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", s.name, err)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

func (s *service) record(outcome string) {
	metrics.LookupCalls.WithLabelValues(s.name, outcome).Inc()
}

// unexpected records an error outcome for a status the caller cannot use.
func (s *service) unexpected(resp *response) error {
	s.record(outcomeError)
	return fmt.Errorf("%s: unexpected status %d", s.name, resp.status)
}

// State reports the breaker state, mainly for health output.
func (s *service) State() gobreaker.State {
	return s.breaker.State()
}
