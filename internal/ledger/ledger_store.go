package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"    // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// ledgerTable is the name of the table holding revival ledger events.
// Its layout must stay in sync with the embedded migration files.
const ledgerTable = "graveyard_ledger_events"

// SQLStore is an append-only event store over a SQL backend. Events are
// serialized as JSON rows ordered by an explicit sequence number, so
// append order survives backends without a rowid concept.
type SQLStore struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string

	mu      sync.Mutex // Serializes writers so sequence numbers never collide
	nextSeq int64
}

var _ contract.LedgerStore = &SQLStore{} // Compile-time check

// NewSQLStore opens a connection for the given backend, creates the event
// table if needed, and positions the append sequence after the last row.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetLedgerDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite ledger at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL ledger: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL ledger: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s ledger: %w. Check that the server is running and connection parameters are valid", backend, err)
	}

	if _, err := db.Exec(getCreateTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", ledgerTable, err)
	}

	store := &SQLStore{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}
	if err := store.loadNextSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the backend.
// The column types are deliberately portable so one migration set can
// serve every backend; only identifier quoting differs.
func getCreateTableQuery(backend schema.DatabaseBackend) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGINT PRIMARY KEY,
			event_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			attempt_id VARCHAR(64) NOT NULL,
			payload TEXT NOT NULL,
			event_time_ns BIGINT NOT NULL
		);
	`, quoteTableName(ledgerTable, backend))
}

// quoteTableName returns the properly quoted table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// loadNextSeq positions the append sequence after the highest stored row.
func (s *SQLStore) loadNextSeq() error {
	query := fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) FROM %s", quoteTableName(ledgerTable, s.backend))
	var maxSeq int64
	if err := s.db.QueryRow(query).Scan(&maxSeq); err != nil {
		return fmt.Errorf("failed to read ledger sequence: %w", err)
	}
	s.nextSeq = maxSeq + 1
	return nil
}

// AppendEvent persists one event at the end of the log. The sequence
// column is the primary key, so a concurrent writer from another process
// surfaces as an insert error instead of silently losing an event.
func (s *SQLStore) AppendEvent(ctx context.Context, event schema.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event %s: %w", event.EventID, err)
	}

	quotedTableName := quoteTableName(ledgerTable, s.backend)
	var query string
	switch s.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (seq, event_id, kind, attempt_id, payload, event_time_ns) VALUES ($1, $2, $3, $4, $5, $6)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (seq, event_id, kind, attempt_id, payload, event_time_ns) VALUES (?, ?, ?, ?, ?, ?)`, quotedTableName)
	}

	_, err = s.db.ExecContext(ctx, query,
		s.nextSeq, event.EventID, string(event.Kind), event.AttemptID, string(payload), event.Time.UnixNano())
	if err != nil {
		return contract.StorageError(err, "failed to append ledger event %s", event.EventID)
	}
	s.nextSeq++
	return nil
}

// LoadEvents returns every stored event in append order.
func (s *SQLStore) LoadEvents(ctx context.Context) ([]schema.LedgerEvent, error) {
	query := fmt.Sprintf("SELECT seq, payload FROM %s ORDER BY seq ASC", quoteTableName(ledgerTable, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, contract.StorageError(err, "failed to read ledger events")
	}
	defer func() { _ = rows.Close() }()

	var events []schema.LedgerEvent
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, contract.StorageError(err, "failed to scan ledger row")
		}
		var event schema.LedgerEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, contract.ParseError(err, "malformed ledger event at seq %d", seq)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, contract.StorageError(err, "failed to iterate ledger events")
	}
	return events, nil
}

// GetStatus returns status information about the ledger store.
func (s *SQLStore) GetStatus() (schema.LedgerStatus, error) {
	status := schema.LedgerStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ledgerTable, s.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT attempt_id) FROM %s", quotedTableName)
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalEvents, &status.TotalAttempts); err != nil {
		return status, fmt.Errorf("failed to count ledger events: %w", err)
	}
	if status.TotalEvents == 0 {
		return status, nil
	}

	rangeQuery := fmt.Sprintf("SELECT MIN(event_time_ns), MAX(event_time_ns) FROM %s", quotedTableName)
	var oldestNs, lastNs int64
	if err := s.db.QueryRow(rangeQuery).Scan(&oldestNs, &lastNs); err != nil {
		return status, fmt.Errorf("failed to read ledger time range: %w", err)
	}
	status.OldestEventTime = time.Unix(0, oldestNs)
	status.LastEventTime = time.Unix(0, lastNs)

	status.TableSizeBytes = s.tableSizeBytes(status.TotalEvents)
	return status, nil
}

// tableSizeBytes estimates the on-disk size of the event table. Backends
// without an exact answer fall back to a rough per-row estimate.
func (s *SQLStore) tableSizeBytes(totalEvents int) int64 {
	fallback := int64(totalEvents) * 1000

	switch s.backend {
	case schema.SQLiteBackend:
		var size int64
		row := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		var size int64
		row := s.db.QueryRow(
			"SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			cfg.DBName, ledgerTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		var size int64
		row := s.db.QueryRow("SELECT pg_total_relation_size($1)", ledgerTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
