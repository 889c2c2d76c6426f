package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
)

// ClickHouseSignalArchive implements the append-only signal audit log on
// ClickHouse. Signals are immutable facts, which fits the MergeTree model:
// inserts only, no updates.
type ClickHouseSignalArchive struct {
	db    *sql.DB
	table string
}

func NewClickHouseSignalArchive(db *sql.DB, table string) repository.SignalArchive {
	return &ClickHouseSignalArchive{db: db, table: table}
}

// Schema returns the idempotent DDL for the archive table.
func Schema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime,
			asset_symbol String,
			kind String,
			strength Float64,
			description String,
			sources String,
			ingested_at DateTime DEFAULT now()
		) ENGINE=MergeTree ORDER BY (asset_symbol, ts)`, table),
	}
}

func (a *ClickHouseSignalArchive) Append(ctx context.Context, s *models.Signal) error {
	sources, err := json.Marshal(s.Sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, asset_symbol, kind, strength, description, sources) VALUES (?, ?, ?, ?, ?, ?)", a.table)
	if _, err := a.db.ExecContext(ctx, q,
		s.Timestamp,
		s.AssetSymbol,
		string(s.Kind),
		s.Strength,
		s.Description,
		string(sources),
	); err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

func (a *ClickHouseSignalArchive) Recent(ctx context.Context, symbol, kind string, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf("SELECT ts, asset_symbol, kind, strength, description, sources FROM %s", a.table)
	var args []interface{}
	where := ""
	if symbol != "" {
		where = " WHERE asset_symbol = ?"
		args = append(args, symbol)
	}
	if kind != "" {
		if where == "" {
			where = " WHERE kind = ?"
		} else {
			where += " AND kind = ?"
		}
		args = append(args, kind)
	}
	q += where + " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	var out []models.Signal
	for rows.Next() {
		var (
			s       models.Signal
			ts      time.Time
			kindStr string
			sources string
		)
		if err := rows.Scan(&ts, &s.AssetSymbol, &kindStr, &s.Strength, &s.Description, &sources); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		s.Timestamp = ts
		s.Kind = models.SignalKind(kindStr)
		if sources != "" {
			_ = json.Unmarshal([]byte(sources), &s.Sources)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *ClickHouseSignalArchive) Close() error { return nil } // pool owned by pkg client
