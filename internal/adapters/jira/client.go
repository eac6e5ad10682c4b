/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/cache"
    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
    "github.com/HamedShams/team-pulse/internal/retry"
)

const (
    redacted         = "[REDACTED]"
    retryBaseDelay   = time.Second
    sprintCacheTTL   = 5 * time.Minute
    sprintPageSize   = 50
    maxErrorBodySize = 64 << 10
)

type Client struct {
    baseURL  string
    token    string
    user     string
    pass     string
    http     *http.Client
    log      zerolog.Logger
    fields   config.JiraFields
    pageSize int
    delay    time.Duration
    retry    retry.Policy
    sprints  *cache.TTL[int64, []domain.Sprint]
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    c := &Client{
        baseURL:  strings.TrimRight(cfg.JiraBaseURL, "/"),
        token:    cfg.JiraPAT,
        user:     cfg.JiraUsername,
        pass:     cfg.JiraPassword,
        http:     &http.Client{Timeout: cfg.RequestTimeout},
        log:      log.With().Str("component", "jira").Logger(),
        fields:   cfg.JiraFields,
        pageSize: cfg.PageSize,
        delay:    cfg.RateLimitDelay,
        sprints:  cache.NewTTL[int64, []domain.Sprint](sprintCacheTTL, nil),
    }
    c.retry = retry.Policy{
        Attempts:  cfg.RetryAttempts,
        BaseDelay: retryBaseDelay,
        Retryable: Retryable,
        OnRetry: func(attempt int, d time.Duration, err error) {
            c.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", d).Msg("jira: request failed, retrying")
        },
    }
    return c
}

func (c *Client) apiURL(path string, q url.Values) string {
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) authorize(req *http.Request) {
    if c.token != "" {
        req.Header.Set("Authorization", "Bearer "+c.token)
    } else if c.user != "" && c.pass != "" {
        req.SetBasicAuth(c.user, c.pass)
    }
}

// doJSON performs a single request and decodes a 2xx body into out.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
    if c.baseURL == "" { return errors.New("jira: empty baseURL") }
    var r io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        r = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, u, r)
    if err != nil { return err }
    req.Header.Set("Accept", "application/json")
    if body != nil { req.Header.Set("Content-Type", "application/json") }
    c.authorize(req)

    resp, err := c.http.Do(req)
    if err != nil {
        if errors.Is(err, context.Canceled) { return err }
        c.log.Debug().Err(err).Str("method", method).Msg("jira: transport error")
        return &transportError{cause: err}
    }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 { return statusError(resp) }
    return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
    se := &StatusError{Code: resp.StatusCode}
    if resp.StatusCode == http.StatusBadRequest {
        var body struct {
            ErrorMessages []string          `json:"errorMessages"`
            Errors        map[string]string `json:"errors"`
        }
        if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&body); err == nil {
            se.Detail = joinMessages(body.ErrorMessages, body.Errors)
        }
    }
    return se
}

// withRetry runs a single Jira call under the client's retry policy.
func (c *Client) withRetry(ctx context.Context, call func(ctx context.Context) error) error {
    return retry.Do(ctx, c.retry, call)
}
