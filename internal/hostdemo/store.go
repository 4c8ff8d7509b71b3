// Package hostdemo is the demo host plugin for cmd/flowd: persistence,
// credential checks, request identity, and a toy load-balancing handler,
// registered into a registry.Registry the same way a real host module would
// register its own native entries.
package hostdemo

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store persists two things across flowd restarts: which (source-hash,
// optimization-level) pairs have already been compiled once, and a
// per-handler invocation counter for the demo's /stats output. Backed by
// SQLite by default; OpenPostgres with a Postgres DSN switches the same schema to
// lib/pq, mirroring Avenir's own go.mod carrying both drivers.
type Store struct {
	db     *sql.DB
	driver string
}

const schema = `
CREATE TABLE IF NOT EXISTS compiled_units (
	hash       TEXT NOT NULL,
	opt_level  INTEGER NOT NULL,
	compiled_at TEXT NOT NULL,
	PRIMARY KEY (hash, opt_level)
);
CREATE TABLE IF NOT EXISTS handler_counts (
	handler TEXT PRIMARY KEY,
	count   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS users (
	name TEXT PRIMARY KEY,
	tier TEXT NOT NULL
);
`

// OpenSQLite opens (creating if needed) a SQLite-backed Store at path.
func OpenSQLite(path string) (*Store, error) {
	return open("sqlite", path)
}

// OpenPostgres opens a Postgres-backed Store at dsn.
func OpenPostgres(dsn string) (*Store, error) {
	return open("postgres", dsn)
}

func open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("hostdemo: open %s store: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("hostdemo: ping %s store: %w", driver, err)
	}
	if _, err := db.Exec(rewriteForDriver(schema, driver)); err != nil {
		db.Close()
		return nil, fmt.Errorf("hostdemo: migrate %s store: %w", driver, err)
	}
	return &Store{db: db, driver: driver}, nil
}

// rewriteForDriver adapts the (SQLite-flavored) schema string to Postgres'
// dialect; the two stay close enough that a handful of substitutions
// suffice, the same pragmatic dual-driver approach Avenir's own go.mod
// implies by carrying both drivers side by side.
func rewriteForDriver(ddl, driver string) string {
	if driver != "postgres" {
		return ddl
	}
	out := ddl
	replacements := [][2]string{
		{"INTEGER NOT NULL DEFAULT 0", "BIGINT NOT NULL DEFAULT 0"},
	}
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r[0], r[1])
	}
	return out
}

// Close releases the underlying *sql.DB.
func (s *Store) Close() error { return s.db.Close() }

// HashSource returns the content hash RecordCompile keys on.
func HashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// RecordCompile reports whether (hash, optLevel) was already compiled on a
// previous run and records it if not, so a restarted flowd can skip logging
// a redundant "compiled fresh" line for source it already knows about.
func (s *Store) RecordCompile(hash string, optLevel int) (alreadySeen bool, err error) {
	row := s.db.QueryRow(s.q(`SELECT 1 FROM compiled_units WHERE hash = ? AND opt_level = ?`), hash, optLevel)
	var one int
	switch err := row.Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		// fall through to insert
	default:
		return false, err
	}
	_, err = s.db.Exec(s.q(`INSERT INTO compiled_units (hash, opt_level, compiled_at) VALUES (?, ?, CURRENT_TIMESTAMP)`), hash, optLevel)
	return false, err
}

// IncrHandlerCount increments the invocation counter for handler name,
// backing the demo's /stats HTTP endpoint.
func (s *Store) IncrHandlerCount(name string) error {
	_, err := s.db.Exec(s.q(`
		INSERT INTO handler_counts (handler, count) VALUES (?, 1)
		ON CONFLICT(handler) DO UPDATE SET count = count + 1
	`), name)
	return err
}

// q rewrites "?" placeholders to lib/pq's positional "$1", "$2", ... form
// when this Store is backed by Postgres; SQLite (and modernc.org/sqlite's
// driver specifically) accepts "?" natively, so this is a no-op there.
func (s *Store) q(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// HandlerCounts returns every handler's invocation count recorded so far.
func (s *Store) HandlerCounts() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT handler, count FROM handler_counts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] = count
	}
	return out, rows.Err()
}

// UserTier looks up a caller's tier from the users table, backing the
// req.user_tier native Property. Returns "" with no error when the user is
// unknown.
func (s *Store) UserTier(name string) (string, error) {
	row := s.db.QueryRow(s.q(`SELECT tier FROM users WHERE name = ?`), name)
	var tier string
	switch err := row.Scan(&tier); err {
	case nil:
		return tier, nil
	case sql.ErrNoRows:
		return "", nil
	default:
		return "", err
	}
}
