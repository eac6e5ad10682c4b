/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package workdays counts the days a member is expected to be at work.
package workdays

import (
    "time"

    "github.com/HamedShams/team-pulse/internal/domain"
)

const dateLayout = "2006-01-02"

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time { return DayIn(t, time.UTC) }

// DayIn returns the calendar date t falls on in loc, as midnight UTC so it
// compares with holiday strings and stored leave dates.
func DayIn(t time.Time, loc *time.Location) time.Time {
    if loc == nil { loc = time.UTC }
    y, m, d := t.In(loc).Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Calculate returns the number of days in [start, end] that are not weekends,
// not covered by a Confirmed or Sick leave and not listed in holidays.
// A day excluded for several reasons is excluded once.
func Calculate(start, end time.Time, leaves []domain.LeaveRange, holidays []string) int {
    start, end = Day(start), Day(end)
    if start.After(end) { return 0 }

    off := make(map[string]struct{}, len(holidays))
    for _, h := range holidays { off[h] = struct{}{} }

    count := 0
    for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
        if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday { continue }
        if _, ok := off[d.Format(dateLayout)]; ok { continue }
        if onLeave(d, leaves) { continue }
        count++
    }
    return count
}

func onLeave(d time.Time, leaves []domain.LeaveRange) bool {
    for _, l := range leaves {
        if !l.Status.Counts() { continue }
        if !d.Before(Day(l.DateFrom)) && !d.After(Day(l.DateTo)) { return true }
    }
    return false
}
