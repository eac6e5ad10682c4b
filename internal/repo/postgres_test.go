package repo

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/HamedShams/team-pulse/internal/domain"
)

func TestGroupLeaves(t *testing.T) {
    d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }
    rows := []leaveRow{
        {Name: "Sara", From: d(3), To: d(4), Status: "Confirmed"},
        {Name: " Reza ", From: d(5), To: d(5), Status: "Draft"},
        {Name: "Sara", From: d(10), To: d(10), Status: "Sick"},
    }

    got := groupLeaves(rows)
    require.Len(t, got, 2)
    assert.Equal(t, "Sara", got[0].Name)
    require.Len(t, got[0].LeaveDate, 2)
    assert.Equal(t, domain.LeaveSick, got[0].LeaveDate[1].Status)
    assert.Equal(t, "Reza", got[1].Name)
    assert.Equal(t, domain.LeaveDraft, got[1].LeaveDate[0].Status)
}

func TestGroupLeaves_Empty(t *testing.T) {
    assert.Empty(t, groupLeaves(nil))
}
