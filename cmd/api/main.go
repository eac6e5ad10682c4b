/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/HamedShams/team-pulse/internal/adapters/holidays"
    "github.com/HamedShams/team-pulse/internal/adapters/jira"
    "github.com/HamedShams/team-pulse/internal/adapters/telegram"
    "github.com/HamedShams/team-pulse/internal/config"
    httpapi "github.com/HamedShams/team-pulse/internal/http"
    "github.com/HamedShams/team-pulse/internal/jobs"
    "github.com/HamedShams/team-pulse/internal/logger"
    "github.com/HamedShams/team-pulse/internal/migrations"
    "github.com/HamedShams/team-pulse/internal/repo"
    "github.com/HamedShams/team-pulse/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()
    if err := migrations.Up(ctx, db.Pool); err != nil { log.Fatal().Err(err).Msg("migrations failed") }

    // Adapters
    jc := jira.NewClient(cfg, log)
    hc := holidays.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)
    if !tg.Enabled() { log.Warn().Msg("telegram token not set; weekly reports will not be delivered") }

    // Services
    repository := repo.NewRepository(db, log)
    svc := services.NewReporter(cfg, log, jc, jc, repository, hc, tg)
    log.Info().Int("members", len(cfg.Roster)).Strs("teams", cfg.Teams).Msg("roster loaded")

    // Cron
    cron, err := jobs.NewCron(cfg, log, svc, repository)
    if err != nil { log.Fatal().Err(err).Str("spec", cfg.ReportCron).Msg("invalid cron spec") }
    cron.Start()
    defer cron.Stop()

    // HTTP server (Gin)
    srv := &http.Server{Addr: cfg.HTTPAddr, Handler: httpapi.NewRouter(cfg, log, svc, repository), ReadHeaderTimeout: 10 * time.Second}
    errCh := make(chan error, 1)
    go func() { errCh <- srv.ListenAndServe() }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")

    // graceful shutdown
    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil && !errors.Is(err, http.ErrServerClosed) { log.Error().Err(err).Msg("http server error") }
    }

    shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancelShutdown()
    if err := srv.Shutdown(shutdownCtx); err != nil { log.Error().Err(err).Msg("http shutdown failed") }
}
