// Package transport owns HTTP issuance for the provider clients: JSON
// POSTs with retry/backoff, streaming POSTs returning a live body, and
// the SSE record decoder.
package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lumenchat/chatkit/version"
)

// RetryPolicy controls the retry loop around one logical request.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// BackoffBase is the first retry delay; doubles per attempt.
	BackoffBase time.Duration

	// BackoffCap bounds a single delay.
	BackoffCap time.Duration

	// MaxRetryAfter caps an honored Retry-After header; 0 disables the
	// header entirely.
	MaxRetryAfter time.Duration
}

func DefaultRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		BackoffBase:   1 * time.Second,
		BackoffCap:    8 * time.Second,
		MaxRetryAfter: 30 * time.Second,
	}
}

// Backoff computes the delay before retry number attempt (0-based):
// min(base<<attempt, cap).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BackoffBase
	if base <= 0 {
		base = 1 * time.Second
	}
	cap := p.BackoffCap
	if cap <= 0 {
		cap = 8 * time.Second
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	if d > cap {
		d = cap
	}
	return d
}

// RetryNotice fires before each backoff wait. attempt is 1-based.
type RetryNotice func(attempt int, wait time.Duration, err error)

// HTTPStatusError is a non-2xx response with its body captured.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPStatusError) Error() string {
	return "http " + strconv.Itoa(e.StatusCode) + ": " + http.StatusText(e.StatusCode)
}

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	Logger     *slog.Logger
	Retry      RetryPolicy
}

func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		HTTPClient: httpClient,
		UserAgent:  "chatkit/" + version.Short(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:      DefaultRetry(),
	}
}

// PostJSON issues a JSON POST with the retry policy and returns the
// response body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, hdr http.Header, body any, notice RetryNotice) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = c.withRetry(ctx, notice, func() error {
		var attemptErr error
		raw, attemptErr = c.doOnce(ctx, endpoint, hdr, bodyBytes)
		return attemptErr
	})
	return raw, err
}

// PostStream issues a streaming POST. The retry policy covers request
// issuance only; once a 2xx response begins, the caller owns the body.
func (c *Client) PostStream(ctx context.Context, endpoint string, hdr http.Header, body any, notice RetryNotice) (*http.Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	err = c.withRetry(ctx, notice, func() error {
		var attemptErr error
		resp, attemptErr = c.doStreamOnce(ctx, endpoint, hdr, bodyBytes)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) withRetry(ctx context.Context, notice RetryNotice, do func() error) error {
	maxRetries := c.Retry.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = do()
		if lastErr == nil {
			return nil
		}
		if attempt >= maxRetries || !Retryable(lastErr) {
			return lastErr
		}

		wait := c.Retry.Backoff(attempt)
		if ra, ok := c.retryAfter(lastErr); ok {
			wait = ra
		}
		if notice != nil {
			notice(attempt+1, wait, lastErr)
		}
		c.Logger.Debug("chat request retry",
			"attempt", attempt+1, "wait", wait, "err", lastErr)
		if err := Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (c *Client) doOnce(ctx context.Context, endpoint string, hdr http.Header, bodyBytes []byte) ([]byte, error) {
	resp, err := c.send(ctx, endpoint, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) doStreamOnce(ctx context.Context, endpoint string, hdr http.Header, bodyBytes []byte) (*http.Response, error) {
	resp, err := c.send(ctx, endpoint, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) send(ctx context.Context, endpoint string, hdr http.Header, bodyBytes []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", randomID())
	}
	if req.Header.Get("Idempotency-Key") == "" {
		req.Header.Set("Idempotency-Key", req.Header.Get("X-Request-Id"))
	}
	return c.HTTPClient.Do(req)
}

// Retryable classifies an attempt error: 408, 429 and 5xx statuses and
// plain network faults retry; everything else is terminal. Cancellation
// is never retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusRequestTimeout:
			return true
		case se.StatusCode == http.StatusTooManyRequests:
			return true
		case se.StatusCode >= 500 && se.StatusCode <= 599:
			return true
		default:
			return false
		}
	}
	// Network and I/O faults.
	return true
}

func (c *Client) retryAfter(err error) (time.Duration, bool) {
	if c.Retry.MaxRetryAfter <= 0 {
		return 0, false
	}
	var se *HTTPStatusError
	if !errors.As(err, &se) {
		return 0, false
	}
	if se.StatusCode != http.StatusTooManyRequests && se.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	v := strings.TrimSpace(se.Header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err2 := strconv.Atoi(v)
	if err2 != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > c.Retry.MaxRetryAfter {
		d = c.Retry.MaxRetryAfter
	}
	return d, true
}

// Sleep waits d or until ctx is cancelled, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
