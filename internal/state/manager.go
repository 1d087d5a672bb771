// Package state persists upload batch history in a local sqlite
// database so past transfers can be inspected after the fact.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// Batch outcome values stored in the status column.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusAborted = "aborted"
	StatusFailed  = "failed"
)

// Manager handles batch history persistence
type Manager struct {
	db *sql.DB
}

// BatchRecord is one finished upload batch
type BatchRecord struct {
	ID             int64
	BatchID        string
	FolderID       string
	StartTime      time.Time
	EndTime        time.Time
	Status         string // "success", "partial", "aborted", "failed"
	FilesUploaded  int
	FilesFailed    int
	FoldersCreated int
	BytesSent      int64
	Error          string
}

// NewManager opens (or creates) the history database under dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vensar-drive.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL UNIQUE,
		folder_id TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		files_uploaded INTEGER DEFAULT 0,
		files_failed INTEGER DEFAULT 0,
		folders_created INTEGER DEFAULT 0,
		bytes_sent INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_batches_start_time ON batches(start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveBatch records a finished upload batch
func (m *Manager) SaveBatch(record BatchRecord) error {
	switch record.Status {
	case StatusSuccess, StatusPartial, StatusAborted, StatusFailed:
	default:
		return fmt.Errorf("invalid status: %s (must be 'success', 'partial', 'aborted', or 'failed')", record.Status)
	}
	if record.BatchID == "" {
		return fmt.Errorf("batch id cannot be empty")
	}

	query := `
		INSERT INTO batches (batch_id, folder_id, start_time, end_time, status, files_uploaded, files_failed, folders_created, bytes_sent, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.BatchID,
		record.FolderID,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.FilesUploaded,
		record.FilesFailed,
		record.FoldersCreated,
		record.BytesSent,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save batch record: %w", err)
	}

	return nil
}

// GetHistory retrieves the most recent batches, newest first
func (m *Manager) GetHistory(limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT id, batch_id, folder_id, start_time, end_time, status, files_uploaded, files_failed, folders_created, bytes_sent, error
		FROM batches
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var record BatchRecord
		err := rows.Scan(
			&record.ID,
			&record.BatchID,
			&record.FolderID,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.FilesUploaded,
			&record.FilesFailed,
			&record.FoldersCreated,
			&record.BytesSent,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// GetBatch retrieves one batch by its public batch id, nil when absent
func (m *Manager) GetBatch(batchID string) (*BatchRecord, error) {
	query := `
		SELECT id, batch_id, folder_id, start_time, end_time, status, files_uploaded, files_failed, folders_created, bytes_sent, error
		FROM batches
		WHERE batch_id = ?
	`

	var record BatchRecord
	err := m.db.QueryRow(query, batchID).Scan(
		&record.ID,
		&record.BatchID,
		&record.FolderID,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.FilesUploaded,
		&record.FilesFailed,
		&record.FoldersCreated,
		&record.BytesSent,
		&record.Error,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	return &record, nil
}

// GetLastSuccess retrieves the most recent fully successful batch,
// nil when there is none
func (m *Manager) GetLastSuccess() (*BatchRecord, error) {
	query := `
		SELECT id, batch_id, folder_id, start_time, end_time, status, files_uploaded, files_failed, folders_created, bytes_sent, error
		FROM batches
		WHERE status = 'success'
		ORDER BY start_time DESC
		LIMIT 1
	`

	var record BatchRecord
	err := m.db.QueryRow(query).Scan(
		&record.ID,
		&record.BatchID,
		&record.FolderID,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.FilesUploaded,
		&record.FilesFailed,
		&record.FoldersCreated,
		&record.BytesSent,
		&record.Error,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// RecordFor builds a BatchRecord from an upload outcome. batchErr is
// the error returned by the orchestrator, nil for completed batches.
func RecordFor(result *domain.BatchResult, folderID string, start, end time.Time, batchErr error) BatchRecord {
	record := BatchRecord{
		BatchID:        result.BatchID,
		FolderID:       folderID,
		StartTime:      start,
		EndTime:        end,
		FilesUploaded:  len(result.Uploaded),
		FilesFailed:    len(result.Failed),
		FoldersCreated: result.FoldersCreated,
		BytesSent:      result.BytesSent,
	}

	switch {
	case batchErr != nil:
		record.Status = StatusAborted
		record.Error = batchErr.Error()
	case len(result.Failed) == 0:
		record.Status = StatusSuccess
	case len(result.Uploaded) > 0:
		record.Status = StatusPartial
	default:
		record.Status = StatusFailed
	}
	return record
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
