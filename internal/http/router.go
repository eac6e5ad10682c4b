/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc service, leaves leaveStore) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, log, svc, leaves)

    r.GET("/healthz", h.Healthz)
    r.GET("/reports/:team", h.Report)
    r.POST("/admin/weekly-report", h.RunWeeklyReport)
    r.POST("/admin/leaves", h.CreateLeave)

    return r
}
