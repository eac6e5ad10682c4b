/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "golang.org/x/time/rate"

    "github.com/HamedShams/team-pulse/internal/domain"
)

type searchRequest struct {
    JQL           string   `json:"jql"`
    Fields        []string `json:"fields"`
    MaxResults    int      `json:"maxResults"`
    NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
    Issues        []issueJSON `json:"issues"`
    IsLast        bool        `json:"isLast"`
    NextPageToken string      `json:"nextPageToken"`
}

type issueJSON struct {
    ID     string                     `json:"id"`
    Key    string                     `json:"key"`
    Fields map[string]json.RawMessage `json:"fields"`
}

func (c *Client) searchFields() []string {
    out := []string{"issuetype", "assignee", "created", "resolutiondate"}
    f := c.fields
    for _, id := range []string{f.StoryPoints, f.ComplexityV1, f.ComplexityV2, f.ComplexityV3, f.SPType, f.SPTypeV2} {
        if id != "" { out = append(out, id) }
    }
    return out
}

// SearchAll follows nextPageToken cursors until Jira reports the last page and
// returns every issue in page order. After every non-final page it pauses for
// the configured delay before asking for the next one.
func (c *Client) SearchAll(ctx context.Context, jql string) ([]domain.RawIssue, error) {
    if strings.TrimSpace(jql) == "" { return nil, fmt.Errorf("failed to fetch issues: %w", domain.ErrValidation) }
    u := c.apiURL("/rest/api/3/search/jql", nil)
    fields := c.searchFields()

    var all []domain.RawIssue
    token := ""
    for page := 1; ; page++ {
        req := searchRequest{JQL: jql, Fields: fields, MaxResults: c.pageSize, NextPageToken: token}
        var resp searchResponse
        err := c.withRetry(ctx, func(ctx context.Context) error {
            resp = searchResponse{}
            return c.doJSON(ctx, http.MethodPost, u, req, &resp)
        })
        if err != nil {
            c.log.Error().Err(err).Int("page", page).Msg("jira: search failed")
            return nil, fmt.Errorf("failed to fetch issues: %w", err)
        }

        for _, it := range resp.Issues { all = append(all, c.toRawIssue(it)) }
        hasNext := !resp.IsLast && resp.NextPageToken != ""
        ev := c.log.Info().Int("page", page).Int("issues", len(resp.Issues)).Bool("has_next", hasNext)
        if resp.NextPageToken != "" { ev = ev.Str("next_page_token", redacted) }
        ev.Msg("jira: fetched page")

        if !resp.IsLast && resp.NextPageToken == "" {
            c.log.Warn().Int("page", page).Msg("jira: page not marked last but has no cursor; stopping")
        }
        if !hasNext { break }
        token = resp.NextPageToken
        if err := c.pageGap(ctx, page); err != nil { return nil, fmt.Errorf("failed to fetch issues: %w", err) }
    }
    return all, nil
}

// pageGap holds the next page request back for the configured delay, counted
// from the moment the previous page arrived.
func (c *Client) pageGap(ctx context.Context, page int) error {
    if c.delay <= 0 { return nil }
    lim := rate.NewLimiter(rate.Every(c.delay), 1)
    lim.Allow()
    c.log.Warn().Int("page", page+1).Dur("delay", c.delay).Msg("jira: rate limit delay applied")
    return lim.Wait(ctx)
}

func (c *Client) toRawIssue(it issueJSON) domain.RawIssue {
    f := it.Fields
    iss := domain.RawIssue{ID: it.ID, Key: it.Key}
    var issueType struct{ Name string `json:"name"` }
    if decode(f["issuetype"], &issueType) { iss.IssueType = issueType.Name }
    var assignee struct{ AccountID string `json:"accountId"` }
    if decode(f["assignee"], &assignee) { iss.AssigneeAccountID = assignee.AccountID }
    iss.Created = parseJiraTime(f["created"])
    iss.Resolved = parseJiraTime(f["resolutiondate"])

    var sp *float64
    if decode(f[c.fields.StoryPoints], &sp) && sp != nil { iss.StoryPoints = *sp }

    if opt, ok := option(f[c.fields.ComplexityV1]); ok { iss.ComplexityV1 = &opt.ID }
    if opt, ok := option(f[c.fields.ComplexityV2]); ok { iss.ComplexityV2 = &opt.Value }
    var multi []optionJSON
    if decode(f[c.fields.ComplexityV3], &multi) {
        for _, o := range multi { iss.ComplexityV3 = append(iss.ComplexityV3, o.Value) }
    }
    iss.SPType = optionOrString(f[c.fields.SPType])
    iss.SPTypeV2 = optionOrString(f[c.fields.SPTypeV2])
    return iss
}

type optionJSON struct {
    ID    string `json:"id"`
    Value string `json:"value"`
}

// decode reports whether raw held a non-null value that decoded into v.
func decode(raw json.RawMessage, v any) bool {
    if len(raw) == 0 || string(raw) == "null" { return false }
    return json.Unmarshal(raw, v) == nil
}

func option(raw json.RawMessage) (optionJSON, bool) {
    var o optionJSON
    if !decode(raw, &o) { return o, false }
    return o, true
}

// optionOrString accepts both select-list options and plain text fields.
func optionOrString(raw json.RawMessage) *string {
    if o, ok := option(raw); ok { return &o.Value }
    var s string
    if decode(raw, &s) { return &s }
    return nil
}

var jiraTimeLayouts = []string{"2006-01-02T15:04:05.000-0700", time.RFC3339Nano, "2006-01-02"}

func parseJiraTime(raw json.RawMessage) *time.Time {
    var s string
    if !decode(raw, &s) || s == "" { return nil }
    for _, layout := range jiraTimeLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            t = t.UTC()
            return &t
        }
    }
    return nil
}
