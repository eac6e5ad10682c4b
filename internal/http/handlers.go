/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
    "github.com/HamedShams/team-pulse/internal/services"
)

type service interface {
    Generate(ctx context.Context, req services.ReportRequest) (domain.TeamReport, error)
    RunWeeklyReport(ctx context.Context) error
}

type leaveStore interface {
    InsertLeave(ctx context.Context, name string, l domain.LeaveRange) (int64, error)
}

type Handlers struct {
    cfg    config.Config
    log    zerolog.Logger
    svc    service
    leaves leaveStore
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service, leaves leaveStore) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc, leaves: leaves}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reportQuery struct {
    SprintID int64  `form:"sprintId" binding:"omitempty,min=1"`
    From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
    To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func parseDay(s string) *time.Time {
    if s == "" { return nil }
    t, err := time.Parse("2006-01-02", s)
    if err != nil { return nil }
    return &t
}

// Report generates a team report for ?sprintId= or ?from=&to=.
func (h *Handlers) Report(c *gin.Context) {
    var q reportQuery
    if err := c.ShouldBindQuery(&q); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: expected sprintId or from/to as YYYY-MM-DD"})
        return
    }
    req := services.ReportRequest{Team: c.Param("team"), SprintID: q.SprintID, From: parseDay(q.From), To: parseDay(q.To)}
    rep, err := h.svc.Generate(c.Request.Context(), req)
    if err != nil {
        code := statusFor(err)
        if code >= http.StatusInternalServerError { h.log.Error().Err(err).Str("team", req.Team).Msg("report request failed") }
        c.JSON(code, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, rep)
}

func statusFor(err error) int {
    switch {
    case errors.Is(err, domain.ErrValidation):
        return http.StatusBadRequest
    case errors.Is(err, domain.ErrAuthentication):
        return http.StatusBadGateway
    default:
        return http.StatusInternalServerError
    }
}

func (h *Handlers) RunWeeklyReport(c *gin.Context) {
    // detached from the request so the run survives the response
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
        defer cancel()
        if err := h.svc.RunWeeklyReport(ctx); err != nil { h.log.Error().Err(err).Msg("manual weekly report failed") }
    }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

type leaveBody struct {
    Name     string `json:"name" binding:"required"`
    DateFrom string `json:"dateFrom" binding:"required,datetime=2006-01-02"`
    DateTo   string `json:"dateTo" binding:"required,datetime=2006-01-02"`
    Status   string `json:"status" binding:"required,oneof=Confirmed Sick Draft"`
}

// CreateLeave records a leave range used by the working-days calculation.
func (h *Handlers) CreateLeave(c *gin.Context) {
    var body leaveBody
    if err := c.ShouldBindJSON(&body); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid leave: expected name, dateFrom, dateTo as YYYY-MM-DD and status Confirmed, Sick or Draft"})
        return
    }
    if strings.TrimSpace(body.Name) == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
        return
    }
    from, to := parseDay(body.DateFrom), parseDay(body.DateTo)
    if from == nil || to == nil || from.After(*to) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "dateFrom must not be after dateTo"})
        return
    }
    id, err := h.leaves.InsertLeave(c.Request.Context(), body.Name, domain.LeaveRange{DateFrom: *from, DateTo: *to, Status: domain.LeaveStatus(body.Status)})
    if err != nil {
        h.log.Error().Err(err).Msg("insert leave failed")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store leave"})
        return
    }
    c.JSON(http.StatusCreated, gin.H{"id": id})
}
