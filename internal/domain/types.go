/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import (
    "strings"
    "time"
)

type Level string

const (
    LevelJunior                Level = "junior"
    LevelMedior                Level = "medior"
    LevelSenior                Level = "senior"
    LevelIndividualContributor Level = "individual contributor"
)

// MinimumTarget is the weight-point total a member of this level is expected to reach.
func (l Level) MinimumTarget() float64 {
    switch Level(strings.ToLower(strings.TrimSpace(string(l)))) {
    case LevelJunior:
        return 56
    case LevelMedior:
        return 68
    default:
        return 80
    }
}

type TeamMember struct {
    Name      string   `json:"name"`
    AccountID string   `json:"accountId"`
    Teams     []string `json:"teams"`
    Level     Level    `json:"level"`
}

// InTeam matches team names case-insensitively.
func (m TeamMember) InTeam(team string) bool {
    for _, t := range m.Teams {
        if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(team)) { return true }
    }
    return false
}

// RawIssue is a resolved Jira issue with the custom fields the report cares about.
// Optional fields are nil/empty when the issue's schema generation does not carry them.
type RawIssue struct {
    ID                string
    Key               string
    AssigneeAccountID string
    IssueType         string
    Created           *time.Time
    Resolved          *time.Time
    StoryPoints       float64

    ComplexityV1 *string  // option id, e.g. "10652"
    ComplexityV2 *string  // single-select label
    ComplexityV3 []string // multi-select labels

    SPType   *string
    SPTypeV2 *string
}

type LeaveStatus string

const (
    LeaveConfirmed LeaveStatus = "Confirmed"
    LeaveSick      LeaveStatus = "Sick"
    LeaveDraft     LeaveStatus = "Draft"
)

// Counts reports whether the leave status reduces working days.
func (s LeaveStatus) Counts() bool { return s == LeaveConfirmed || s == LeaveSick }

type LeaveRange struct {
    DateFrom time.Time   `json:"dateFrom"`
    DateTo   time.Time   `json:"dateTo"`
    Status   LeaveStatus `json:"status"`
}

type LeaveRecord struct {
    Name      string       `json:"name"`
    LeaveDate []LeaveRange `json:"leaveDate"`
}

type HolidayDate struct {
    Date              string `json:"date"`
    Name              string `json:"name,omitempty"`
    IsNationalHoliday bool   `json:"isNationalHoliday"`
}

type Sprint struct {
    ID        int64      `json:"id"`
    Name      string     `json:"name"`
    State     string     `json:"state"`
    BoardID   int64      `json:"originBoardId"`
    StartDate *time.Time `json:"startDate,omitempty"`
    EndDate   *time.Time `json:"endDate,omitempty"`
}

type ReportEntry struct {
    Name                 string  `json:"name"`
    Level                Level   `json:"level"`
    ProductPoint         float64 `json:"productPoint"`
    TechDebtPoint        float64 `json:"techDebtPoint"`
    TotalPoint           float64 `json:"totalPoint"`
    WeightPointsProduct  float64 `json:"weightPointsProduct"`
    WeightPointsTechDebt float64 `json:"weightPointsTechDebt"`
    DevDefect            int     `json:"devDefect"`
    WorkingDays          *int    `json:"workingDays,omitempty"`
    ProductivityRate     string  `json:"productivityRate"`
    DevDefectRate        string  `json:"devDefectRate"`
    AverageComplexity    string  `json:"averageComplexity"`
}

type TeamSummary struct {
    TotalIssueProduct   float64 `json:"totalIssueProduct"`
    TotalIssueTechDebt  float64 `json:"totalIssueTechDebt"`
    ProductPercentage   string  `json:"productPercentage"`
    TechDebtPercentage  string  `json:"techDebtPercentage"`
    AverageProductivity string  `json:"averageProductivity"`
    TotalWorkingDays    int     `json:"totalWorkingDays"`
    AverageWorkingDays  string  `json:"averageWorkingDays"`
}

type TeamReport struct {
    Team     string        `json:"team"`
    SprintID int64         `json:"sprintId,omitempty"`
    From     *time.Time    `json:"from,omitempty"`
    To       *time.Time    `json:"to,omitempty"`
    Entries  []ReportEntry `json:"entries"`
    Summary  TeamSummary   `json:"summary"`
}
