package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/dhcgn/mbox-to-postgres/model"
)

const (
	dropEmailsTable = `DROP TABLE IF EXISTS emails`

	// id is SERIAL but every insert supplies the archive ordinal explicitly.
	createEmailsTable = `
CREATE TABLE emails (
	id        SERIAL PRIMARY KEY,
	address   VARCHAR NOT NULL,
	domain    VARCHAR NOT NULL,
	timestamp TIMESTAMP WITH TIME ZONE NOT NULL
)`

	insertEmail = `INSERT INTO emails (id, address, domain, timestamp) VALUES ($1, $2, $3, $4)`
)

// Execer is the subset of *sql.DB used for schema statements.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Preparer is the subset of *sql.DB used to prepare the insert statement.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type DB struct {
	*sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Statements run strictly in order on one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{db}, nil
}

// ResetSchema drops and recreates the emails table.
func ResetSchema(ctx context.Context, db Execer) error {
	for _, stmt := range []string{dropEmailsTable, createEmailsTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
	}
	return nil
}

type statement interface {
	ExecContext(ctx context.Context, args ...any) (sql.Result, error)
	Close() error
}

// Inserter persists records with a prepared statement. Each call is
// independent: there is no transaction and no retry.
type Inserter struct {
	stmt statement
}

func PrepareInsert(ctx context.Context, db Preparer) (*Inserter, error) {
	stmt, err := db.PrepareContext(ctx, insertEmail)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &Inserter{stmt: stmt}, nil
}

func (i *Inserter) Insert(ctx context.Context, rec model.Record) error {
	if _, err := i.stmt.ExecContext(ctx, rec.ID, rec.Address, rec.Domain, rec.Timestamp); err != nil {
		return fmt.Errorf("insert email %d: %w", rec.ID, err)
	}
	return nil
}

func (i *Inserter) Close() error {
	return i.stmt.Close()
}
