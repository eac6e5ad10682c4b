/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "errors"
    "fmt"
    "net"
    "net/http"
    "sort"
    "strings"
    "syscall"

    "github.com/HamedShams/team-pulse/internal/domain"
)

// StatusError is a non-2xx answer from Jira. Detail holds Jira's errorMessages
// for 400 responses only; bodies are never copied verbatim.
type StatusError struct {
    Code   int
    Detail string
}

func (e *StatusError) Error() string {
    if e.Detail != "" { return fmt.Sprintf("jira api status=%d: %s", e.Code, e.Detail) }
    return fmt.Sprintf("jira api status=%d", e.Code)
}

func (e *StatusError) Unwrap() error {
    switch {
    case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
        return domain.ErrAuthentication
    case e.Code == http.StatusBadRequest:
        return domain.ErrValidation
    case e.Code == http.StatusTooManyRequests || e.Code >= 500:
        return domain.ErrTransient
    }
    return nil
}

// transportError hides the request URL and low-level message from callers.
type transportError struct{ cause error }

func (e *transportError) Error() string   { return "jira unreachable" }
func (e *transportError) Unwrap() []error { return []error{domain.ErrTransient, e.cause} }

// Retryable reports whether a failed Jira call may be repeated:
// 429 and 5xx answers, and connection-level failures.
func Retryable(err error) bool {
    if err == nil { return false }
    var se *StatusError
    if errors.As(err, &se) {
        return se.Code == http.StatusTooManyRequests || se.Code >= 500
    }
    return isTransportFailure(err)
}

func isTransportFailure(err error) bool {
    if errors.Is(err, context.Canceled) { return false }
    var dnsErr *net.DNSError
    if errors.As(err, &dnsErr) { return true }
    if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) { return true }
    var ne net.Error
    if errors.As(err, &ne) && ne.Timeout() { return true }
    var opErr *net.OpError
    if errors.As(err, &opErr) && opErr.Op == "dial" { return true }
    return false
}

func joinMessages(msgs []string, fieldErrs map[string]string) string {
    parts := make([]string, 0, len(msgs)+len(fieldErrs))
    for _, m := range msgs {
        if m = strings.TrimSpace(m); m != "" { parts = append(parts, m) }
    }
    keys := make([]string, 0, len(fieldErrs))
    for k := range fieldErrs { keys = append(keys, k) }
    sort.Strings(keys)
    for _, k := range keys { parts = append(parts, k+": "+fieldErrs[k]) }
    return strings.Join(parts, "; ")
}
