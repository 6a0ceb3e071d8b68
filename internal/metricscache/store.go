/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package metricscache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	// PostgreSQL through database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"

	"gorichtext/internal/geom"
	applog "gorichtext/internal/log"
	"gorichtext/internal/version"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

// SQLStore persists text measurements in SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
	log    *slog.Logger
}

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open opens a store. A postgres:// URL selects PostgreSQL, anything else
// is taken as a SQLite file path.
func Open(ctx context.Context, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("cache dsn is required")
	}
	if IsPostgresDSN(dsn) {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// OpenSQLite opens (creating if needed) a cache file at path.
func OpenSQLite(ctx context.Context, p string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("metricscache"), "open").With(slog.String("path", p))
	if dir := filepath.Dir(p); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(p))
	db, err := sql.Open(driverSQLite, dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return ready(ctx, db, driverSQLite, l)
}

// OpenPostgres connects to a shared cache database.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("metricscache"), "open").With(slog.String("driver", driverPostgres))
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return ready(ctx, db, driverPostgres, l)
}

func ready(ctx context.Context, db *sql.DB, driver string, l *slog.Logger) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver, log: l}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		l.Error("migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("cache ready")
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// Driver returns the database/sql driver name in use.
func (s *SQLStore) Driver() string { return s.driver }

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLStore) rebind(q string) string {
	if s.driver != driverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// migrate applies embedded SQL migrations in filename order.
func (s *SQLStore) migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    BIGINT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied := map[int64]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, fname := range files {
		v, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[v] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		s.log.Debug("applying migration", slog.String("file", fname))
		if _, err := s.db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`), v, fname, now); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO cache_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`), "app_version", version.String())
	if err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	parts := strings.SplitN(path.Base(name), "_", 2)
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

// Get looks up a measurement.
func (s *SQLStore) Get(ctx context.Context, ns, font, text string) (geom.Size, bool, error) {
	var w, h float64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT width, height FROM text_metrics WHERE ns = ? AND font = ? AND text = ?`),
		ns, font, text).Scan(&w, &h)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return geom.Size{}, false, nil
	case err != nil:
		return geom.Size{}, false, fmt.Errorf("select metrics: %w", err)
	}
	return geom.Size{W: float32(w), H: float32(h)}, true, nil
}

// Put stores or replaces a measurement.
func (s *SQLStore) Put(ctx context.Context, ns, font, text string, size geom.Size) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO text_metrics (ns, font, text, width, height)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (ns, font, text) DO UPDATE SET width = excluded.width, height = excluded.height`),
		ns, font, text, float64(size.W), float64(size.H))
	if err != nil {
		return fmt.Errorf("upsert metrics: %w", err)
	}
	return nil
}

// StoreStats summarises the persisted cache.
type StoreStats struct {
	Entries    int64
	Namespaces int64
}

func (s *SQLStore) Stats(ctx context.Context) (StoreStats, error) {
	var st StoreStats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT ns) FROM text_metrics`).Scan(&st.Entries, &st.Namespaces)
	if err != nil {
		return StoreStats{}, fmt.Errorf("count metrics: %w", err)
	}
	return st, nil
}

// Clear removes the entries of ns, or every entry when ns is empty.
func (s *SQLStore) Clear(ctx context.Context, ns string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if ns == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM text_metrics`)
	} else {
		res, err = s.db.ExecContext(ctx, s.rebind(`DELETE FROM text_metrics WHERE ns = ?`), ns)
	}
	if err != nil {
		return 0, fmt.Errorf("clear metrics: %w", err)
	}
	return res.RowsAffected()
}
