package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeParams   = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	readParams    = "_foreign_keys=on&_busy_timeout=5000&mode=ro&_query_only=1"
	bootstrapRead = "_foreign_keys=on&_busy_timeout=5000&_query_only=1"
	maxReadConns  = 8
	connMaxLife   = 15 * time.Minute
	readIdleTime  = 5 * time.Minute
)

// DB holds the single-writer and pooled-reader handles for one SQLite file.
type DB struct {
	WriteSQL *sql.DB
	ReadSQL  *sql.DB
	W        *bun.DB
	R        *bun.DB
}

// OpenDB opens path with one immediate-lock writer and a read-only pool.
func OpenDB(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	wsql, err := sql.Open("sqlite3", dsn(path, writeParams))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(connMaxLife)

	rsql, err := openReader(path)
	if err != nil {
		_ = wsql.Close()
		return nil, err
	}

	return &DB{
		WriteSQL: wsql,
		ReadSQL:  rsql,
		W:        bun.NewDB(wsql, sqlitedialect.New()),
		R:        bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

func openReader(path string) (*sql.DB, error) {
	rsql, err := sql.Open("sqlite3", dsn(path, readParams))
	if err != nil {
		return nil, fmt.Errorf("open read db: %w", err)
	}

	// mode=ro cannot open a file that does not exist yet.
	if pingErr := rsql.Ping(); pingErr != nil && strings.Contains(pingErr.Error(), "unable to open database file") {
		_ = rsql.Close()
		rsql, err = sql.Open("sqlite3", dsn(path, bootstrapRead))
		if err != nil {
			return nil, fmt.Errorf("open fallback read db: %w", err)
		}
	}

	rsql.SetMaxOpenConns(maxReadConns)
	rsql.SetConnMaxIdleTime(readIdleTime)
	rsql.SetConnMaxLifetime(connMaxLife)

	if _, err := rsql.Exec("PRAGMA query_only = ON"); err != nil {
		_ = rsql.Close()
		return nil, fmt.Errorf("enable read query_only: %w", err)
	}
	return rsql, nil
}

func dsn(path, params string) string {
	return fmt.Sprintf("file:%s?%s", path, params)
}

// Close closes both handles and joins any close errors.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.W != nil {
		if err := db.W.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close write db: %w", err))
		}
	}
	if db.R != nil {
		if err := db.R.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close read db: %w", err))
		}
	}
	return errors.Join(errs...)
}
