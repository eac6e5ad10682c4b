/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
    "github.com/HamedShams/team-pulse/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

type leaveRow struct {
    Name   string
    From   time.Time
    To     time.Time
    Status string
}

// LeavesBetween returns every leave overlapping [from, to], grouped by member name.
// Filtering by team member is left to the caller.
func (r *Repository) LeavesBetween(ctx context.Context, from, to time.Time) ([]domain.LeaveRecord, error) {
    const q = `SELECT member_name, date_from, date_to, status
        FROM leaves
        WHERE date_from <= $2 AND date_to >= $1
        ORDER BY member_name, date_from`
    rows, err := r.db.Pool.Query(ctx, q, from, to)
    if err != nil { return nil, err }
    list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leaveRow, error) {
        var l leaveRow
        err := row.Scan(&l.Name, &l.From, &l.To, &l.Status)
        return l, err
    })
    if err != nil { return nil, err }
    return groupLeaves(list), nil
}

// InsertLeave stores a single leave range for a member.
func (r *Repository) InsertLeave(ctx context.Context, name string, l domain.LeaveRange) (int64, error) {
    const q = `INSERT INTO leaves(member_name, date_from, date_to, status) VALUES($1,$2,$3,$4) RETURNING id`
    var id int64
    err := r.db.Pool.QueryRow(ctx, q, strings.TrimSpace(name), l.DateFrom, l.DateTo, string(l.Status)).Scan(&id)
    return id, err
}

func groupLeaves(rows []leaveRow) []domain.LeaveRecord {
    var out []domain.LeaveRecord
    idx := map[string]int{}
    for _, l := range rows {
        name := strings.TrimSpace(l.Name)
        i, ok := idx[name]
        if !ok {
            i = len(out)
            idx[name] = i
            out = append(out, domain.LeaveRecord{Name: name})
        }
        out[i].LeaveDate = append(out[i].LeaveDate, domain.LeaveRange{
            DateFrom: l.From,
            DateTo:   l.To,
            Status:   domain.LeaveStatus(l.Status),
        })
    }
    return out
}
