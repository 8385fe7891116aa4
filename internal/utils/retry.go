package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultRetryDelays is the pause before each retry: 1s, 3s and 5s.
var DefaultRetryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// WithRetry runs fn and retries transient failures with DefaultRetryDelays.
func WithRetry(ctx context.Context, fn func() error) error {
	return WithRetryDelays(ctx, DefaultRetryDelays, fn)
}

// WithRetryDelays is WithRetry with custom delays.
func WithRetryDelays(ctx context.Context, delays []time.Duration, fn func() error) error {
	return Retry(ctx, delays, IsRetriable, fn)
}

// Retry runs fn once, then once more after each delay while retriable
// accepts the error. It stops early when ctx is done and returns the last error.
func Retry(ctx context.Context, delays []time.Duration, retriable func(error) bool, fn func() error) error {
	err := fn()
	for _, delay := range delays {
		if err == nil || !retriable(err) {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
		err = fn()
	}
	return err
}

// IsRetriable reports whether err is a transient backend or network failure.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable,
			codes.DeadlineExceeded,
			codes.ResourceExhausted,
			codes.Aborted:
			return true
		case codes.Unknown:
			// plain errors land here too, fall through to the network checks
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return os.IsTimeout(err)
}

// IsDialError reports whether err happened while connecting, so the request
// never reached the peer.
func IsDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
