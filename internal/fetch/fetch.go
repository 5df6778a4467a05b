// internal/fetch/fetch.go
//
// Downloads source images.
// One blocking GET per call, bounded by the client timeout; no retries.
// Non-2xx responses and transport failures are returned as errors the batch
// driver can classify (StatusError, ErrTimeout).

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 25 * time.Second

// DefaultMaxBytes caps the size of one downloaded image.
const DefaultMaxBytes int64 = 64 << 20

const userAgent = "Mozilla/5.0 (compatible; skuimg/1.0)"

var (
	ErrTimeout  = errors.New("request timed out")
	ErrBadURL   = errors.New("invalid url")
	ErrTooLarge = errors.New("response too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher is a Fetcher backed by a resty client.
type HTTPFetcher struct {
	client   *resty.Client
	maxBytes int64
}

// Option customises an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// NewHTTPFetcher builds a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "image/*,*/*;q=0.8").
		SetDoNotParseResponse(true).
		SetLogger(restyLogger{})

	f := &HTTPFetcher{client: client, maxBytes: DefaultMaxBytes}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads rawURL and returns its body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadURL, rawURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return nil, classify(err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, 4<<10))
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode()}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

// classify wraps deadline-style failures in ErrTimeout.
func classify(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Str("component", "fetch").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Str("component", "fetch").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Str("component", "fetch").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
