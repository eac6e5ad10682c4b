package jobs

import (
    "context"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
)

type service interface { RunWeeklyReport(ctx context.Context) error }

type locker interface {
    TryAdvisoryLock(ctx context.Context, key int64) (bool, error)
    AdvisoryUnlock(ctx context.Context, key int64) error
}

const weeklyLockKey int64 = 424242

type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    svc  service
    lock locker
    c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, l locker) (*Cron, error) {
    loc, err := time.LoadLocation(cfg.TZ)
    if err != nil { loc = time.UTC }
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, lock: l, c: c}
    if _, err := c.AddFunc(cfg.ReportCron, cr.weekly); err != nil { return nil, err }
    return cr, nil
}

func (cr *Cron) Start(){ cr.c.Start() }
func (cr *Cron) Stop(){ <-cr.c.Stop().Done() }

// weekly runs the report on at most one replica at a time.
func (cr *Cron) weekly(){
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute); defer cancel()
    ok, err := cr.lock.TryAdvisoryLock(ctx, weeklyLockKey)
    if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
    if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
    defer func(){ _ = cr.lock.AdvisoryUnlock(context.Background(), weeklyLockKey) }()
    cr.log.Info().Msg("cron: weekly report")
    if err := cr.svc.RunWeeklyReport(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: weekly report failed") }
}
