package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path and enables WAL
// journal mode. The URI parameter ensures better concurrency for read-heavy
// workloads.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates core tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            UserId TEXT PRIMARY KEY,
            Email TEXT NOT NULL UNIQUE,
            DisplayName TEXT,
            Role TEXT NOT NULL,
            PasswordHash TEXT NOT NULL,
            Status TEXT NOT NULL,
            CreationTime TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS Visits (
            VisitId TEXT PRIMARY KEY,
            VisitDate TEXT NOT NULL,
            Person TEXT NOT NULL,
            Department TEXT,
            Designation TEXT,
            Project TEXT NOT NULL,
            EntryTime TEXT,
            OutTime TEXT,
            DurationRaw TEXT,
            DurationSeconds INTEGER NOT NULL DEFAULT 0,
            Improper BOOLEAN NOT NULL DEFAULT 0,
            Source TEXT NOT NULL,
            CreationTime TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS Visits_Date_Idx ON Visits(VisitDate);`,
		`CREATE TABLE IF NOT EXISTS Receipts (
            ReceiptId TEXT PRIMARY KEY,
            Project TEXT NOT NULL,
            MrfNumber TEXT NOT NULL,
            Supplier TEXT,
            Material TEXT NOT NULL,
            Quantity TEXT,
            Unit TEXT,
            ReceivedDate TEXT NOT NULL,
            ReceivedTime TEXT,
            CreationTime TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS Receipts_Date_Idx ON Receipts(ReceivedDate);`,
		`CREATE TABLE IF NOT EXISTS Issues (
            IssueId TEXT PRIMARY KEY,
            Project TEXT NOT NULL,
            Description TEXT NOT NULL,
            Photos TEXT,
            Comments TEXT,
            Status TEXT NOT NULL,
            Category TEXT,
            Priority TEXT,
            Summary TEXT,
            CreationTime TIMESTAMP NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
