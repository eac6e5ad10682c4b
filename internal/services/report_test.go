package services

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/HamedShams/team-pulse/internal/adapters/telegram"
    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
)

type fakeSearcher struct {
    issues []domain.RawIssue
    err    error
    jql    []string
}

func (f *fakeSearcher) SearchAll(_ context.Context, jql string) ([]domain.RawIssue, error) {
    f.jql = append(f.jql, jql)
    return f.issues, f.err
}

type fakeSprints struct {
    sprint domain.Sprint
    err    error
    calls  int
}

func (f *fakeSprints) FindSprint(_ context.Context, id int64, _ []int64) (domain.Sprint, error) {
    f.calls++
    if f.err != nil { return domain.Sprint{}, f.err }
    s := f.sprint
    s.ID = id
    return s, nil
}

type fakeLeaves struct {
    records []domain.LeaveRecord
    err     error
}

func (f *fakeLeaves) LeavesBetween(context.Context, time.Time, time.Time) ([]domain.LeaveRecord, error) {
    return f.records, f.err
}

type fakeHolidays struct {
    list []domain.HolidayDate
    err  error
}

func (f *fakeHolidays) Holidays(context.Context, int) ([]domain.HolidayDate, error) {
    return f.list, f.err
}

type sent struct {
    chat int64
    text string
}

type fakeNotifier struct {
    mu    sync.Mutex
    msgs  []sent
    plain []sent
    err   error
}

func (f *fakeNotifier) SendMarkdownV2(_ context.Context, chat int64, text string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.msgs = append(f.msgs, sent{chat, text})
    return f.err
}

func (f *fakeNotifier) SendMessagePlain(_ context.Context, chat int64, text string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.plain = append(f.plain, sent{chat, text})
    return nil
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type harness struct {
    search   *fakeSearcher
    sprints  *fakeSprints
    leaves   *fakeLeaves
    holidays *fakeHolidays
    tg       *fakeNotifier
    r        *Reporter
}

func newHarness() *harness {
    start, end := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)
    h := &harness{
        search:  &fakeSearcher{issues: exampleIssues()},
        sprints: &fakeSprints{sprint: domain.Sprint{Name: "Sprint 12", StartDate: &start, EndDate: &end}},
        leaves: &fakeLeaves{records: []domain.LeaveRecord{{
            Name:      " sara ",
            LeaveDate: []domain.LeaveRange{
                {DateFrom: date(2025, 3, 10), DateTo: date(2025, 3, 11), Status: domain.LeaveConfirmed},
                {DateFrom: date(2025, 3, 12), DateTo: date(2025, 3, 12), Status: domain.LeaveDraft},
            },
        }}},
        holidays: &fakeHolidays{list: []domain.HolidayDate{
            {Date: "2025-03-05", Name: "National day", IsNationalHoliday: true},
            {Date: "2025-03-06", Name: "Company event"},
            {Date: "2025-04-01", IsNationalHoliday: true},
        }},
        tg: &fakeNotifier{},
    }
    cfg := config.Config{
        JiraProject:     "SNAPPDR",
        JiraBoardIDs:    []int64{1},
        JiraIssueTypes:  []string{"Story", "Bug"},
        Teams:           []string{"Alpha"},
        Roster:          []domain.TeamMember{sara, reza, nima, {Name: "Omid", AccountID: "acc-omid", Teams: []string{"Beta"}, Level: domain.LevelSenior}},
        TelegramChatIDs: []int64{100, 200},
    }
    h.r = NewReporter(cfg, zerolog.Nop(), h.search, h.sprints, h.leaves, h.holidays, h.tg)
    h.r.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
    return h
}

func TestGenerate_SprintWithWorkingDays(t *testing.T) {
    h := newHarness()
    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "alpha", SprintID: 42})
    require.NoError(t, err)

    require.Len(t, h.search.jql, 1)
    assert.Contains(t, h.search.jql[0], "sprint = 42")
    assert.Contains(t, h.search.jql[0], `assignee in ("acc-sara", "acc-reza", "acc-nima")`)
    assert.NotContains(t, h.search.jql[0], "acc-omid")

    require.NotNil(t, rep.From)
    assert.Equal(t, date(2025, 3, 3), *rep.From)
    assert.Equal(t, date(2025, 3, 14), *rep.To)

    require.Len(t, rep.Entries, 2)
    s, r := rep.Entries[0], rep.Entries[1]
    require.NotNil(t, s.WorkingDays)
    require.NotNil(t, r.WorkingDays)
    assert.Equal(t, 7, *s.WorkingDays)
    assert.Equal(t, 9, *r.WorkingDays)
    assert.Equal(t, "14.29%", s.ProductivityRate)
    assert.Equal(t, "6.94%", r.ProductivityRate)
    assert.Equal(t, 16, rep.Summary.TotalWorkingDays)
    assert.Equal(t, "8.00", rep.Summary.AverageWorkingDays)
    assert.Equal(t, "61.54%", rep.Summary.ProductPercentage)
}

func TestGenerate_SprintNotFoundOmitsWorkingDays(t *testing.T) {
    h := newHarness()
    h.sprints.err = domain.ErrDataUnavailable
    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", SprintID: 42})
    require.NoError(t, err)

    assert.Nil(t, rep.From)
    require.Len(t, rep.Entries, 2)
    for _, e := range rep.Entries { assert.Nil(t, e.WorkingDays) }
    assert.Equal(t, "10.00%", rep.Entries[0].ProductivityRate)
    assert.Equal(t, "0", rep.Summary.AverageWorkingDays)
}

func TestGenerate_DateRange(t *testing.T) {
    h := newHarness()
    from, to := date(2025, 3, 3), date(2025, 3, 14)
    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", From: &from, To: &to})
    require.NoError(t, err)

    assert.Zero(t, h.sprints.calls)
    assert.Contains(t, h.search.jql[0], `resolved < "2025-03-15"`)
    require.NotNil(t, rep.Entries[0].WorkingDays)
    assert.Equal(t, 7, *rep.Entries[0].WorkingDays)
}

func TestGenerate_SourcesDegrade(t *testing.T) {
    h := newHarness()
    h.leaves.err = errors.New("db down")
    h.holidays.err = domain.ErrDataUnavailable
    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", SprintID: 42})
    require.NoError(t, err)

    require.Len(t, rep.Entries, 2)
    assert.Equal(t, 10, *rep.Entries[0].WorkingDays)
    assert.Equal(t, 10, *rep.Entries[1].WorkingDays)
}

func TestGenerate_SearchFailure(t *testing.T) {
    h := newHarness()
    h.search.err = domain.ErrAuthentication
    _, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", SprintID: 42})
    require.Error(t, err)
    assert.ErrorIs(t, err, domain.ErrAuthentication)
}

func TestGenerate_Validation(t *testing.T) {
    h := newHarness()
    from, to := date(2025, 3, 14), date(2025, 3, 3)
    cases := map[string]ReportRequest{
        "no team":      {SprintID: 1},
        "no window":    {Team: "Alpha"},
        "half range":   {Team: "Alpha", From: &from},
        "inverted":     {Team: "Alpha", From: &from, To: &to},
        "unknown team": {Team: "Gamma", SprintID: 1},
    }
    for name, req := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := h.r.Generate(context.Background(), req)
            assert.ErrorIs(t, err, domain.ErrValidation)
        })
    }
    assert.Empty(t, h.search.jql)
}

func TestGenerate_NoIssuesYieldsEmptyEntries(t *testing.T) {
    h := newHarness()
    h.search.issues = nil
    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", SprintID: 42})
    require.NoError(t, err)
    assert.NotNil(t, rep.Entries)
    assert.Empty(t, rep.Entries)
    assert.Equal(t, "0.00%", rep.Summary.ProductPercentage)
}

func TestRunWeeklyReport(t *testing.T) {
    h := newHarness()
    h.r.cfg.Teams = []string{"Alpha", "Gamma"}
    err := h.r.RunWeeklyReport(context.Background())
    require.Error(t, err)
    assert.ErrorIs(t, err, domain.ErrValidation)

    assert.Contains(t, h.search.jql[0], `resolved >= "2025-03-08"`)
    assert.Contains(t, h.search.jql[0], `resolved < "2025-03-15"`)
    require.Len(t, h.tg.msgs, 2)
    assert.Equal(t, int64(100), h.tg.msgs[0].chat)
    assert.Equal(t, int64(200), h.tg.msgs[1].chat)
    assert.Contains(t, h.tg.msgs[0].text, "Team Pulse: Alpha")
}

func TestRunWeeklyReport_SendFailureIsNotFatal(t *testing.T) {
    h := newHarness()
    h.tg.err = errors.New("telegram: status 500")
    require.NoError(t, h.r.RunWeeklyReport(context.Background()))
    assert.Len(t, h.tg.msgs, 2)
}

func TestRunWeeklyReport_RejectedMarkdownFallsBackToPlain(t *testing.T) {
    h := newHarness()
    h.tg.err = fmt.Errorf("telegram sendMessage status=400: %w", telegram.ErrBadRequest)
    require.NoError(t, h.r.RunWeeklyReport(context.Background()))

    require.Len(t, h.tg.msgs, 2)
    require.Len(t, h.tg.plain, 2)
    assert.Equal(t, int64(100), h.tg.plain[0].chat)
    assert.Equal(t, int64(200), h.tg.plain[1].chat)
    assert.True(t, strings.HasPrefix(h.tg.plain[0].text, "Team Pulse: Alpha\n"))
    assert.Contains(t, h.tg.plain[0].text, "2025-03-08 to 2025-03-14")
    assert.NotContains(t, h.tg.plain[0].text, `\`)
}

func TestRunWeeklyReport_OtherSendErrorsDoNotFallBack(t *testing.T) {
    h := newHarness()
    h.tg.err = errors.New("telegram sendMessage status=502")
    require.NoError(t, h.r.RunWeeklyReport(context.Background()))
    assert.Empty(t, h.tg.plain)
}

func TestRunWeeklyReport_WindowEndsOnLocalDate(t *testing.T) {
    h := newHarness()
    h.r.loc = time.FixedZone("IRST", 3*3600+1800)
    h.r.now = func() time.Time { return time.Date(2025, 3, 14, 21, 0, 0, 0, time.UTC) } // 00:30 on 15 March locally
    require.NoError(t, h.r.RunWeeklyReport(context.Background()))
    assert.Contains(t, h.search.jql[0], `resolved >= "2025-03-09"`)
    assert.Contains(t, h.search.jql[0], `resolved < "2025-03-16"`)
}

func TestGenerate_SprintDatesCutInConfiguredZone(t *testing.T) {
    h := newHarness()
    h.r.loc = time.FixedZone("IRST", 3*3600+1800)
    start := time.Date(2025, 3, 2, 20, 45, 0, 0, time.UTC) // 00:15 on 3 March locally
    end := time.Date(2025, 3, 14, 13, 0, 0, 0, time.UTC)
    h.sprints.sprint.StartDate, h.sprints.sprint.EndDate = &start, &end

    rep, err := h.r.Generate(context.Background(), ReportRequest{Team: "Alpha", SprintID: 42})
    require.NoError(t, err)
    require.NotNil(t, rep.From)
    assert.Equal(t, date(2025, 3, 3), *rep.From)
    assert.Equal(t, date(2025, 3, 14), *rep.To)
    assert.Equal(t, 7, *rep.Entries[0].WorkingDays)
}

func TestRenderMarkdownV2(t *testing.T) {
    from, to := date(2025, 3, 3), date(2025, 3, 14)
    days := 7
    rep := domain.TeamReport{
        Team: "Alpha", From: &from, To: &to,
        Entries: []domain.ReportEntry{{Name: "Sara", TotalPoint: 8, ProductPoint: 8, ProductivityRate: "14.29%", DevDefectRate: "100%", AverageComplexity: "0.05", WorkingDays: &days}},
        Summary: domain.TeamSummary{TotalIssueProduct: 8, ProductPercentage: "100.00%", TechDebtPercentage: "0.00%", AverageProductivity: "14.29%"},
    }
    text := RenderMarkdownV2(rep)
    assert.True(t, strings.HasPrefix(text, "*Team Pulse: Alpha*\n"))
    assert.Contains(t, text, `2025\-03\-03 to 2025\-03\-14`)
    assert.Contains(t, text, `\- Sara: 8\.0 pts`)
    assert.Contains(t, text, `14\.29%`)
    assert.Contains(t, text, "7 working days")

    empty := RenderMarkdownV2(domain.TeamReport{Team: "Beta", SprintID: 9})
    assert.Contains(t, empty, "Sprint 9")
    assert.Contains(t, empty, `No resolved issues for this team\.`)
}

func TestChunkLines(t *testing.T) {
    assert.Equal(t, []string{"ab\ncd", "efg"}, chunkLines("ab\ncd\nefg", 5))
    assert.Equal(t, []string{"abcd", "ef"}, chunkLines("abcdef", 4))
    assert.Equal(t, []string{"ab", `\.c`}, chunkLines(`ab\.c`, 3))
    assert.Equal(t, []string{"short"}, chunkLines("short", 4096))
    assert.Equal(t, []string{""}, chunkLines("", 10))
}
