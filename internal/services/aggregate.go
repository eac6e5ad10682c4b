/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"

    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/domain"
    "github.com/HamedShams/team-pulse/internal/strategy"
)

const (
    hoursPerDay          = 8
    defaultCapacityHours = 80
    bugIssueType         = "Bug"
)

// Aggregator accumulates per-member points from a stream of issues.
// Issues whose assignee is not one of the members are dropped without error.
type Aggregator struct {
    log       zerolog.Logger
    members   []domain.TeamMember
    byAccount map[string]int
    entries   []domain.ReportEntry
    dropped   int
}

func NewAggregator(members []domain.TeamMember, log zerolog.Logger) *Aggregator {
    a := &Aggregator{
        log:       log,
        members:   members,
        byAccount: make(map[string]int, len(members)),
        entries:   make([]domain.ReportEntry, len(members)),
    }
    for i, m := range members {
        a.byAccount[m.AccountID] = i
        a.entries[i] = domain.ReportEntry{Name: m.Name, Level: m.Level}
    }
    return a
}

// Add applies one issue. It reports false when the assignee is not a member.
func (a *Aggregator) Add(issue domain.RawIssue) bool {
    i, ok := a.byAccount[issue.AssigneeAccountID]
    if !ok || issue.AssigneeAccountID == "" {
        a.dropped++
        return false
    }
    e := &a.entries[i]
    s := strategy.Resolve(issue)
    weight := s.Weight.Weight(issue)
    cat := s.Category.Category(issue)
    a.log.Debug().Str("issue", issue.Key).Str("weight_strategy", s.Weight.Name()).
        Str("category_strategy", s.Category.Name()).Str("category", cat.String()).Float64("weight", weight).
        Msg("issue classified")
    // one decision drives both the point and the weight bucket
    if cat == strategy.Product {
        e.ProductPoint += issue.StoryPoints
        e.WeightPointsProduct += weight
    } else {
        e.TechDebtPoint += issue.StoryPoints
        e.WeightPointsTechDebt += weight
    }
    e.TotalPoint = e.ProductPoint + e.TechDebtPoint
    if issue.IssueType == bugIssueType { e.DevDefect++ }
    return true
}

func (a *Aggregator) Dropped() int { return a.dropped }

// All returns every member's entry, including members without points.
func (a *Aggregator) All() []domain.ReportEntry {
    return append([]domain.ReportEntry(nil), a.entries...)
}

// Finalize computes derived metrics and the team summary. workingDays may be nil
// or return nil for a member without working-day data.
func (a *Aggregator) Finalize(workingDays func(domain.TeamMember) *int) ([]domain.ReportEntry, domain.TeamSummary) {
    var out []domain.ReportEntry
    var rates []float64
    for i, m := range a.members {
        e := &a.entries[i]
        if workingDays != nil { e.WorkingDays = workingDays(m) }
        if e.TotalPoint == 0 {
            resetDerived(e)
            continue
        }
        capacity := float64(defaultCapacityHours)
        if e.WorkingDays != nil && *e.WorkingDays > 0 { capacity = float64(*e.WorkingDays * hoursPerDay) }
        rate := e.TotalPoint / capacity * 100
        e.ProductivityRate = percent(rate)
        e.DevDefectRate = devDefectRate(e.DevDefect)
        e.AverageComplexity = fmt.Sprintf("%.2f", (e.WeightPointsProduct+e.WeightPointsTechDebt)/m.Level.MinimumTarget())
        out = append(out, *e)
        rates = append(rates, rate)
    }
    return out, summarize(out, rates)
}

func resetDerived(e *domain.ReportEntry) {
    e.ProductivityRate = "0%"
    e.DevDefectRate = "0%"
    e.AverageComplexity = "0"
}

func devDefectRate(n int) string {
    switch {
    case n <= 2:
        return "100%"
    case n <= 5:
        return "80%"
    case n <= 7:
        return "50%"
    default:
        return "0%"
    }
}

func percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func summarize(entries []domain.ReportEntry, rates []float64) domain.TeamSummary {
    var s domain.TeamSummary
    for _, e := range entries {
        s.TotalIssueProduct += e.ProductPoint
        s.TotalIssueTechDebt += e.TechDebtPoint
    }
    total := s.TotalIssueProduct + s.TotalIssueTechDebt
    s.ProductPercentage, s.TechDebtPercentage = percent(0), percent(0)
    if total > 0 {
        s.ProductPercentage = percent(s.TotalIssueProduct / total * 100)
        s.TechDebtPercentage = percent(s.TotalIssueTechDebt / total * 100)
    }

    avg := 0.0
    if len(rates) > 0 {
        for _, r := range rates { avg += r }
        avg /= float64(len(rates))
    }
    s.AverageProductivity = percent(avg)

    withDays := 0
    for _, e := range entries {
        if e.WorkingDays == nil { continue }
        s.TotalWorkingDays += *e.WorkingDays
        withDays++
    }
    s.AverageWorkingDays = "0"
    if withDays > 0 { s.AverageWorkingDays = fmt.Sprintf("%.2f", float64(s.TotalWorkingDays)/float64(withDays)) }
    return s
}
