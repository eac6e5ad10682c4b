/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "strconv"
    "strings"
    "time"
)

type issueQuery struct {
    Project    string
    SprintID   int64
    From, To   *time.Time
    Assignees  []string
    IssueTypes []string
}

func quoteJQL(s string) string {
    return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func quoteList(values []string) string {
    q := make([]string, 0, len(values))
    for _, v := range values { q = append(q, quoteJQL(v)) }
    return "(" + strings.Join(q, ", ") + ")"
}

// JQL renders the resolved-issues query. A sprint id wins over a date range;
// the range end is inclusive, so the upper bound is the following midnight.
func (q issueQuery) JQL() string {
    var clauses []string
    if q.Project != "" { clauses = append(clauses, "project = "+quoteJQL(q.Project)) }
    switch {
    case q.SprintID > 0:
        clauses = append(clauses, "sprint = "+strconv.FormatInt(q.SprintID, 10))
    case q.From != nil && q.To != nil:
        clauses = append(clauses,
            "resolved >= "+quoteJQL(q.From.Format("2006-01-02")),
            "resolved < "+quoteJQL(q.To.AddDate(0, 0, 1).Format("2006-01-02")))
    }
    if len(q.Assignees) > 0 { clauses = append(clauses, "assignee in "+quoteList(q.Assignees)) }
    if len(q.IssueTypes) > 0 { clauses = append(clauses, "issuetype in "+quoteList(q.IssueTypes)) }
    clauses = append(clauses, "resolution is not EMPTY")
    return strings.Join(clauses, " AND ") + " ORDER BY created DESC"
}
