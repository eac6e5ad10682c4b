/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"

    "github.com/HamedShams/team-pulse/internal/adapters/holidays"
    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
    "github.com/HamedShams/team-pulse/internal/workdays"
)

type IssueSearcher interface {
    SearchAll(ctx context.Context, jql string) ([]domain.RawIssue, error)
}

type SprintFinder interface {
    FindSprint(ctx context.Context, sprintID int64, boardIDs []int64) (domain.Sprint, error)
}

type LeaveStore interface {
    LeavesBetween(ctx context.Context, from, to time.Time) ([]domain.LeaveRecord, error)
}

type HolidayProvider interface {
    Holidays(ctx context.Context, year int) ([]domain.HolidayDate, error)
}

type Notifier interface {
    SendMarkdownV2(ctx context.Context, chatID int64, text string) error
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
}

type ReportRequest struct {
    Team     string
    SprintID int64
    From     *time.Time
    To       *time.Time
}

type Reporter struct {
    cfg      config.Config
    log      zerolog.Logger
    issues   IssueSearcher
    sprints  SprintFinder
    leaves   LeaveStore
    holidays HolidayProvider
    tg       Notifier
    now      func() time.Time
    loc      *time.Location
}

func NewReporter(cfg config.Config, log zerolog.Logger, issues IssueSearcher, sprints SprintFinder, leaves LeaveStore, hp HolidayProvider, tg Notifier) *Reporter {
    loc, err := time.LoadLocation(cfg.TZ)
    if err != nil {
        log.Warn().Err(err).Str("tz", cfg.TZ).Msg("report: unknown time zone, using UTC dates")
        loc = time.UTC
    }
    return &Reporter{cfg: cfg, log: log, issues: issues, sprints: sprints, leaves: leaves, holidays: hp, tg: tg, now: time.Now, loc: loc}
}

// TeamMembers returns the roster members of a team, in roster order.
func (r *Reporter) TeamMembers(team string) []domain.TeamMember {
    var out []domain.TeamMember
    for _, m := range r.cfg.Roster {
        if m.InTeam(team) { out = append(out, m) }
    }
    return out
}

func (req ReportRequest) validate() error {
    if strings.TrimSpace(req.Team) == "" { return fmt.Errorf("team is required: %w", domain.ErrValidation) }
    hasRange := req.From != nil && req.To != nil
    if req.SprintID <= 0 && !hasRange {
        return fmt.Errorf("either a sprint id or a from/to range is required: %w", domain.ErrValidation)
    }
    if (req.From == nil) != (req.To == nil) {
        return fmt.Errorf("from and to must be given together: %w", domain.ErrValidation)
    }
    if hasRange && req.From.After(*req.To) {
        return fmt.Errorf("from is after to: %w", domain.ErrValidation)
    }
    return nil
}

// inputs is the working-day data for a report window.
type inputs struct {
    start, end time.Time
    leaves     []domain.LeaveRecord
    holidays   []string
}

// Generate builds the productivity report of one team for a sprint or a date range.
func (r *Reporter) Generate(ctx context.Context, req ReportRequest) (domain.TeamReport, error) {
    if err := req.validate(); err != nil { return domain.TeamReport{}, fmt.Errorf("generate report: %w", err) }
    members := r.TeamMembers(req.Team)
    if len(members) == 0 {
        return domain.TeamReport{}, fmt.Errorf("generate report: unknown team %q: %w", req.Team, domain.ErrValidation)
    }
    log := r.log.With().Str("run_id", uuid.NewString()).Str("team", req.Team).Int64("sprint_id", req.SprintID).Logger()
    log.Info().Int("members", len(members)).Msg("report: start")

    start, end, ok := r.window(ctx, log, req)
    var in *inputs
    if ok { in = r.fetchInputs(ctx, log, start, end) }

    accounts := make([]string, 0, len(members))
    for _, m := range members { accounts = append(accounts, m.AccountID) }
    q := issueQuery{
        Project:    r.cfg.JiraProject,
        SprintID:   req.SprintID,
        From:       req.From,
        To:         req.To,
        Assignees:  accounts,
        IssueTypes: r.cfg.JiraIssueTypes,
    }
    issues, err := r.issues.SearchAll(ctx, q.JQL())
    if err != nil {
        log.Error().Err(err).Msg("report: issue search failed")
        return domain.TeamReport{}, fmt.Errorf("generate report: %w", err)
    }

    agg := NewAggregator(members, log)
    for _, iss := range issues { agg.Add(iss) }
    if n := agg.Dropped(); n > 0 { log.Debug().Int("dropped", n).Msg("report: issues without a team assignee") }

    var wd func(domain.TeamMember) *int
    if in != nil { wd = in.workingDays }
    entries, summary := agg.Finalize(wd)

    rep := domain.TeamReport{Team: req.Team, SprintID: req.SprintID, Entries: entries, Summary: summary}
    if ok {
        rep.From, rep.To = &start, &end
    }
    if rep.Entries == nil { rep.Entries = []domain.ReportEntry{} }
    log.Info().Int("issues", len(issues)).Int("entries", len(entries)).Msg("report: done")
    return rep, nil
}

// window resolves the report's date boundaries. Sprint timestamps are cut to
// their calendar date in the configured time zone. A sprint that cannot be found
// leaves the report without working-day data unless a range was also given.
func (r *Reporter) window(ctx context.Context, log zerolog.Logger, req ReportRequest) (time.Time, time.Time, bool) {
    if req.SprintID > 0 {
        s, err := r.sprints.FindSprint(ctx, req.SprintID, r.cfg.JiraBoardIDs)
        switch {
        case err != nil:
            log.Warn().Err(err).Msg("report: sprint not found, proceeding without working days")
        case s.StartDate == nil || s.EndDate == nil:
            log.Warn().Msg("report: sprint has no dates, proceeding without working days")
        default:
            return workdays.DayIn(*s.StartDate, r.loc), workdays.DayIn(*s.EndDate, r.loc), true
        }
    }
    if req.From != nil && req.To != nil { return workdays.Day(*req.From), workdays.Day(*req.To), true }
    return time.Time{}, time.Time{}, false
}

// fetchInputs loads leaves and holidays in parallel. Either source failing degrades to empty.
func (r *Reporter) fetchInputs(ctx context.Context, log zerolog.Logger, start, end time.Time) *inputs {
    in := &inputs{start: start, end: end}
    var g errgroup.Group
    g.Go(func() error {
        leaves, err := r.leaves.LeavesBetween(ctx, start, end)
        if err != nil {
            log.Warn().Err(err).Msg("report: leave records unavailable")
            return nil
        }
        in.leaves = leaves
        return nil
    })
    g.Go(func() error {
        var all []domain.HolidayDate
        for y := start.Year(); y <= end.Year(); y++ {
            list, err := r.holidays.Holidays(ctx, y)
            if err != nil {
                log.Warn().Err(err).Int("year", y).Msg("report: holidays unavailable")
                return nil
            }
            all = append(all, list...)
        }
        in.holidays = holidays.NationalBetween(all, start, end)
        return nil
    })
    _ = g.Wait()
    return in
}

func (in *inputs) workingDays(m domain.TeamMember) *int {
    var ranges []domain.LeaveRange
    for _, rec := range in.leaves {
        if strings.EqualFold(strings.TrimSpace(rec.Name), m.Name) { ranges = append(ranges, rec.LeaveDate...) }
    }
    n := workdays.Calculate(in.start, in.end, ranges, in.holidays)
    return &n
}
