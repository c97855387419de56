package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "tasks.db"

	schemaVersion = 1
	dirMode       = 0700

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// IsPostgres reports whether dsn points at a Postgres server rather than a
// local sqlite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Init creates the task store schema if needed. dsn is either a sqlite file
// path or a postgres:// connection string.
func Init(dsn string) error {
	if dsn == "" {
		return errors.New("dsn not specified")
	}

	if !IsPostgres(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), dirMode); err != nil {
			return fmt.Errorf("error creating database dir for %s: %w", dsn, err)
		}
	}

	db, err := GetDB(dsn)
	if err != nil {
		return fmt.Errorf("error opening database %s: %w", dsn, err)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("failed to read the schema creation file: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version < schemaVersion {
		if _, err := db.Exec(rebind(db, "INSERT INTO schema_version (version) VALUES (?)"), schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		slog.Debug("db schema created", "version", schemaVersion)
	}

	return nil
}

// GetDB opens the task store. The caller owns the returned handle.
func GetDB(dsn string) (*sql.DB, error) {
	driver := driverSQLite
	if IsPostgres(dsn) {
		driver = driverPostgres
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return conn, nil
}

// rebind converts ? placeholders to $N when db is backed by Postgres.
func rebind(db *sql.DB, query string) string {
	if _, ok := db.Driver().(*pq.Driver); !ok {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
