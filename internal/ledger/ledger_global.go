package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &LedgerStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for ledger storage.
func GetDBFilePath() string {
	return contract.GetLedgerDBFilePath()
}

// InitLedger initializes the global ledger manager. The none backend gets
// an in-memory store, so revival commands still run and report outcomes
// while nothing survives the process.
func InitLedger(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var store contract.LedgerStore
		var err error

		switch backend {
		case schema.NoneBackend:
			store = NewMemoryStore()
		default:
			store, err = NewSQLStore(backend, connStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize revival ledger: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.ledger = store
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseLedger should be called on application shutdown.
func CloseLedger() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.ledger != nil {
			_ = Manager.ledger.Close()
		}
	})
}

// ClearLedger clears the persisted ledger for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearLedger(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, ledgerTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, ledgerTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported ledger backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
