/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package retry runs an operation with exponential backoff between attempts.
// The delay before retry i (0-based) is BaseDelay * 2^i.
package retry

import (
    "context"
    "time"

    "github.com/cenkalti/backoff/v4"
)

type Policy struct {
    Attempts  int
    BaseDelay time.Duration
    // Retryable reports whether a failed attempt may be repeated. Nil means every error is retryable.
    Retryable func(error) bool
    // Timer drives the waits between attempts; nil uses a real timer.
    Timer backoff.Timer
    // OnRetry is called before each wait with the 1-based number of the attempt that failed.
    OnRetry func(attempt int, delay time.Duration, err error)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
    attempts := p.Attempts
    if attempts < 1 { attempts = 1 }
    eb := backoff.NewExponentialBackOff()
    eb.InitialInterval = p.BaseDelay
    eb.RandomizationFactor = 0
    eb.Multiplier = 2
    eb.MaxInterval = 24 * time.Hour
    eb.MaxElapsedTime = 0
    return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Do calls op until it succeeds, returns a non-retryable error, or attempts run out.
// The last error is returned as is; non-retryable errors are returned after a single call.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
    failed := 0
    operation := func() error {
        err := op(ctx)
        if err == nil { return nil }
        failed++
        if p.Retryable != nil && !p.Retryable(err) { return backoff.Permanent(err) }
        return err
    }
    notify := func(err error, d time.Duration) {
        if p.OnRetry != nil { p.OnRetry(failed, d, err) }
    }
    return backoff.RetryNotifyWithTimer(operation, p.backOff(ctx), notify, p.Timer)
}
