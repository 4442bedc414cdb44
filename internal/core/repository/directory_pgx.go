package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimsdash/authgate/internal/core/domain"
)

// PgxUserDirectory implements domain.UserDirectory over a Postgres table with
// columns user_id, username, password, user_level, user_group.
//
// It keeps the tabular-store contract: every lookup scans all rows and the
// first case-insensitive username match wins, so duplicate usernames resolve
// by row order. No index is consulted and nothing is cached, so lookups
// always reflect the latest table state.
type PgxUserDirectory struct {
	pool  *pgxpool.Pool
	table string
}

// NewPgxUserDirectory creates a directory reading from the given table.
func NewPgxUserDirectory(pool *pgxpool.Pool, table string) *PgxUserDirectory {
	return &PgxUserDirectory{pool: pool, table: table}
}

// Ping verifies the users table exists and is readable. A missing table is a
// configuration error and should fail startup.
func (d *PgxUserDirectory) Ping(ctx context.Context) error {
	query := fmt.Sprintf(`SELECT user_id FROM %s LIMIT 1`, d.table)
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("missing or unreadable users table %q: %w", d.table, err)
	}
	rows.Close()
	return rows.Err()
}

// FindUserByUsername scans the table for the first case-insensitive match.
func (d *PgxUserDirectory) FindUserByUsername(ctx context.Context, username string) (*domain.UserRecord, error) {
	query := fmt.Sprintf(`SELECT user_id, username, password, user_level, user_group FROM %s`, d.table)

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users table %q: %w", d.table, err)
	}
	defer rows.Close()

	want := strings.ToLower(strings.TrimSpace(username))
	for rows.Next() {
		var rec domain.UserRecord
		var group *int
		if err := rows.Scan(&rec.UserID, &rec.Username, &rec.Password, &rec.UserLevel, &group); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		rec.Username = strings.TrimSpace(rec.Username)
		if strings.ToLower(rec.Username) != want {
			continue
		}
		if group != nil {
			rec.UserGroup = *group
		}
		return &rec, nil
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read users table %q: %w", d.table, err)
	}

	return nil, nil
}
