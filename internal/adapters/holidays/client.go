/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package holidays

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
)

type Client struct {
    baseURL string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: strings.TrimRight(cfg.HolidayAPIURL, "/"),
        http:    &http.Client{Timeout: cfg.RequestTimeout},
        log:     log.With().Str("component", "holidays").Logger(),
    }
}

// entry accepts both the snake_case and camelCase shapes public calendars use.
type entry struct {
    HolidayDate       string `json:"holiday_date"`
    Date              string `json:"date"`
    HolidayName       string `json:"holiday_name"`
    Name              string `json:"name"`
    IsNational        *bool  `json:"is_national_holiday"`
    IsNationalHoliday *bool  `json:"isNationalHoliday"`
}

func (e entry) toDomain() (domain.HolidayDate, bool) {
    raw := e.HolidayDate
    if raw == "" { raw = e.Date }
    t, err := time.Parse("2006-1-2", strings.TrimSpace(raw))
    if err != nil { return domain.HolidayDate{}, false }
    name := e.HolidayName
    if name == "" { name = e.Name }
    national := false
    if e.IsNational != nil { national = *e.IsNational }
    if e.IsNationalHoliday != nil { national = *e.IsNationalHoliday }
    return domain.HolidayDate{Date: t.Format("2006-01-02"), Name: name, IsNationalHoliday: national}, true
}

// Holidays returns the calendar of a year as published by the provider.
func (c *Client) Holidays(ctx context.Context, year int) ([]domain.HolidayDate, error) {
    if c.baseURL == "" { return nil, fmt.Errorf("holidays: empty baseURL: %w", domain.ErrDataUnavailable) }
    q := url.Values{}
    q.Set("year", strconv.Itoa(year))
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
    if err != nil { return nil, err }
    req.Header.Set("Accept", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return nil, fmt.Errorf("holidays %d: %w", year, domain.ErrDataUnavailable) }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        return nil, fmt.Errorf("holidays %d: status=%d: %w", year, resp.StatusCode, domain.ErrDataUnavailable)
    }
    var raw []entry
    if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
        return nil, fmt.Errorf("holidays %d: decode: %w: %w", year, domain.ErrDataUnavailable, err)
    }
    out := make([]domain.HolidayDate, 0, len(raw))
    for _, e := range raw {
        if h, ok := e.toDomain(); ok { out = append(out, h) }
    }
    c.log.Debug().Int("year", year).Int("holidays", len(out)).Msg("holidays loaded")
    return out, nil
}

// NationalBetween keeps the national holidays falling inside [from, to].
func NationalBetween(list []domain.HolidayDate, from, to time.Time) []string {
    lo, hi := from.Format("2006-01-02"), to.Format("2006-01-02")
    var out []string
    for _, h := range list {
        if !h.IsNationalHoliday { continue }
        if h.Date < lo || h.Date > hi { continue }
        out = append(out, h.Date)
    }
    return out
}
