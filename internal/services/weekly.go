/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/HamedShams/team-pulse/internal/adapters/telegram"
    "github.com/HamedShams/team-pulse/internal/domain"
    "github.com/HamedShams/team-pulse/internal/workdays"
)

const telegramMaxRunes = 4096

// RunWeeklyReport generates the last seven days' report of every configured team
// and posts it to the configured Telegram chats. A failing team does not stop the others.
func (r *Reporter) RunWeeklyReport(ctx context.Context) error {
    teams := r.cfg.Teams
    if r.cfg.ReportTeamDefault != "" { teams = []string{r.cfg.ReportTeamDefault} }
    to := workdays.DayIn(r.now(), r.loc)
    from := to.AddDate(0, 0, -6)

    var errs []error
    for _, team := range teams {
        rep, err := r.Generate(ctx, ReportRequest{Team: team, From: &from, To: &to})
        if err != nil {
            r.log.Error().Err(err).Str("team", team).Msg("weekly report failed")
            errs = append(errs, err)
            continue
        }
        chunks := chunkLines(RenderMarkdownV2(rep), telegramMaxRunes)
        for _, chat := range r.cfg.TelegramChatIDs {
            if err := r.deliver(ctx, chat, chunks); err != nil {
                r.log.Error().Err(err).Int64("chat", chat).Str("team", team).Msg("telegram send failed")
            }
        }
    }
    return errors.Join(errs...)
}

// deliver sends the chunks in order. A chunk Telegram cannot parse is resent as plain text.
func (r *Reporter) deliver(ctx context.Context, chat int64, chunks []string) error {
    for _, text := range chunks {
        err := r.tg.SendMarkdownV2(ctx, chat, text)
        if errors.Is(err, telegram.ErrBadRequest) {
            r.log.Warn().Int64("chat", chat).Msg("telegram rejected MarkdownV2, resending as plain text")
            err = r.tg.SendMessagePlain(ctx, chat, telegram.StripMarkdownV2(text))
        }
        if err != nil { return err }
    }
    return nil
}

// RenderMarkdownV2 formats a report as an escaped Telegram MarkdownV2 message.
func RenderMarkdownV2(rep domain.TeamReport) string {
    esc := telegram.EscapeMarkdownV2
    var b strings.Builder
    b.WriteString("*" + esc("Team Pulse: "+rep.Team) + "*\n")
    switch {
    case rep.From != nil && rep.To != nil:
        b.WriteString(esc(rep.From.Format("2006-01-02")+" to "+rep.To.Format("2006-01-02")) + "\n")
    case rep.SprintID > 0:
        b.WriteString(esc(fmt.Sprintf("Sprint %d", rep.SprintID)) + "\n")
    }
    b.WriteString("\n")
    if len(rep.Entries) == 0 {
        b.WriteString(esc("No resolved issues for this team.") + "\n")
    }
    for _, e := range rep.Entries {
        line := fmt.Sprintf("- %s: %.1f pts (product %.1f, tech debt %.1f), productivity %s, defects %d (%s), complexity %s",
            e.Name, e.TotalPoint, e.ProductPoint, e.TechDebtPoint, e.ProductivityRate, e.DevDefect, e.DevDefectRate, e.AverageComplexity)
        if e.WorkingDays != nil { line += fmt.Sprintf(", %d working days", *e.WorkingDays) }
        b.WriteString(esc(line) + "\n")
    }
    s := rep.Summary
    b.WriteString("\n" + esc(fmt.Sprintf("Product %.1f (%s), tech debt %.1f (%s), avg productivity %s",
        s.TotalIssueProduct, s.ProductPercentage, s.TotalIssueTechDebt, s.TechDebtPercentage, s.AverageProductivity)))
    return b.String()
}

// chunkLines splits text into chunks of at most limit runes, breaking on line
// boundaries. A longer line is hard-split, never directly after an escaping backslash.
func chunkLines(s string, limit int) []string {
    var chunks []string
    var cur []rune
    flush := func() {
        if len(cur) > 0 { chunks = append(chunks, string(cur)); cur = nil }
    }
    for _, ln := range strings.Split(s, "\n") {
        r := []rune(ln)
        for len(r) > limit {
            flush()
            cut := limit
            if r[cut-1] == '\\' && cut > 1 { cut-- }
            chunks = append(chunks, string(r[:cut]))
            r = r[cut:]
        }
        extra := len(r)
        if len(cur) > 0 { extra++ }
        if len(cur)+extra > limit { flush() }
        if len(cur) > 0 { cur = append(cur, '\n') }
        cur = append(cur, r...)
    }
    flush()
    if len(chunks) == 0 { chunks = []string{""} }
    return chunks
}
