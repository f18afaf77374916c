// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to all persisted entities.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint
// violation. Unique indexes are the atomic backstop behind the
// read-before-write duplicate checks in the service layer.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// MonthlyCount is one month's worth of created rows, used by the
// aggregate stats queries. Month is formatted YYYY-MM.
type MonthlyCount struct {
	Month string
	Count int64
}

// scanMonthlyCounts reads (month, count) rows.
func scanMonthlyCounts(rows *sql.Rows) ([]MonthlyCount, error) {
	defer rows.Close()

	var out []MonthlyCount
	for rows.Next() {
		var mc MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}
