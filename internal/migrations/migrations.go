/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package migrations

import (
    "context"
    "embed"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/jackc/pgx/v5/stdlib"
    "github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

// Up applies the embedded schema to the pool's database.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
    db := stdlib.OpenDBFromPool(pool)
    // connections belong to the pool; the sql.DB must not keep idle ones
    db.SetMaxIdleConns(0)
    goose.SetBaseFS(embedMigrations)
    if err := goose.SetDialect("postgres"); err != nil { return err }
    return goose.UpContext(ctx, db, ".")
}
