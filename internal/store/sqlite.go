// Package store provides data persistence implementations.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"inversor/internal/models"
)

// SQLiteStore persists the ledger's transaction history and portfolio state
// so a session survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based store at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Append-only transaction history
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		commission REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);

	-- Single-row portfolio state
	CREATE TABLE IF NOT EXISTS portfolio (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		cash REAL NOT NULL,
		shares REAL NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordTransaction appends one executed order to the history.
func (s *SQLiteStore) RecordTransaction(tx models.Transaction) error {
	_, err := s.db.Exec(`
		INSERT INTO transactions (timestamp, symbol, side, quantity, price, commission)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.Timestamp, tx.Symbol, string(tx.Side), tx.Quantity, tx.Price, tx.Commission,
	)
	return err
}

// SaveState upserts the single portfolio row.
func (s *SQLiteStore) SaveState(cash, shares float64) error {
	_, err := s.db.Exec(`
		INSERT INTO portfolio (id, cash, shares, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET cash = excluded.cash, shares = excluded.shares, updated_at = excluded.updated_at`,
		cash, shares, time.Now(),
	)
	return err
}

// ClearHistory wipes the transaction history.
func (s *SQLiteStore) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM transactions`)
	return err
}

// LoadState returns the persisted portfolio state, or found=false when no
// session has been saved yet.
func (s *SQLiteStore) LoadState() (cash, shares float64, found bool, err error) {
	row := s.db.QueryRow(`SELECT cash, shares FROM portfolio WHERE id = 1`)
	err = row.Scan(&cash, &shares)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return cash, shares, true, nil
}

// LoadTransactions returns the full history, oldest first.
func (s *SQLiteStore) LoadTransactions() ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, symbol, side, quantity, price, commission
		FROM transactions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var side string
		if err := rows.Scan(&tx.ID, &tx.Timestamp, &tx.Symbol, &side, &tx.Quantity, &tx.Price, &tx.Commission); err != nil {
			return nil, err
		}
		tx.Side = models.Side(side)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
