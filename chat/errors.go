package chat

import (
	"context"
	"errors"
	"fmt"
)

// ConfigError reports an unusable configuration: missing apiUrl/model/key,
// an unknown provider id, or an image source the target protocol cannot
// express. It is fatal and never retried.
type ConfigError struct {
	Provider Provider
	Message  string
}

func (e *ConfigError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("chat %s: %s", e.Provider, e.Message)
	}
	return "chat: " + e.Message
}

func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// RequestError is the terminal failure of a generation call after retries
// and key fallback are exhausted.
type RequestError struct {
	Provider Provider

	// StatusCode is the last HTTP status observed, 0 for network faults.
	StatusCode int
	Message    string

	// Raw is the last response body, when one was read.
	Raw []byte

	Cause error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat %s: http %d: %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("chat %s: %s", e.Provider, msg)
}

func (e *RequestError) Unwrap() error { return e.Cause }

func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsCancellation reports whether err is the caller aborting the call, as
// opposed to a provider or network failure. Cancellation bypasses retry
// and key fallback and always propagates.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
