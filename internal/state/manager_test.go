package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()

	manager, err := NewManager(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	if manager.db == nil {
		t.Error("Database connection is nil")
	}

	dbPath := filepath.Join(tmpDir, "vensar-drive.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewManager_EmptyDir(t *testing.T) {
	_, err := NewManager("")
	if err == nil {
		t.Error("Expected error for empty directory, got nil")
	}
}

func TestSaveAndGetBatch(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	record := BatchRecord{
		BatchID:        "batch-1",
		FolderID:       "folder-7",
		StartTime:      time.Now().Add(-time.Minute),
		EndTime:        time.Now(),
		Status:         StatusSuccess,
		FilesUploaded:  4,
		FoldersCreated: 2,
		BytesSent:      2048,
	}
	if err := manager.SaveBatch(record); err != nil {
		t.Fatalf("Failed to save batch: %v", err)
	}

	history, err := manager.GetHistory(10)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(history))
	}

	got := history[0]
	if got.BatchID != record.BatchID {
		t.Errorf("Expected batch id %s, got %s", record.BatchID, got.BatchID)
	}
	if got.Status != StatusSuccess {
		t.Errorf("Expected status %s, got %s", StatusSuccess, got.Status)
	}
	if got.FilesUploaded != 4 || got.FoldersCreated != 2 || got.BytesSent != 2048 {
		t.Errorf("Unexpected counters: %+v", got)
	}

	byID, err := manager.GetBatch("batch-1")
	if err != nil {
		t.Fatalf("Failed to get batch by id: %v", err)
	}
	if byID == nil || byID.FolderID != "folder-7" {
		t.Errorf("Expected batch-1 with folder-7, got %+v", byID)
	}
}

func TestGetBatch_Missing(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	got, err := manager.GetBatch("no-such-batch")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing batch, got %+v", got)
	}
}

func TestSaveBatch_InvalidStatus(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	record := BatchRecord{
		BatchID:   "batch-bad",
		StartTime: time.Now(),
		EndTime:   time.Now(),
		Status:    "exploded",
	}
	if err := manager.SaveBatch(record); err == nil {
		t.Error("Expected error for invalid status, got nil")
	}

	record.Status = StatusSuccess
	record.BatchID = ""
	if err := manager.SaveBatch(record); err == nil {
		t.Error("Expected error for empty batch id, got nil")
	}
}

func TestGetHistoryOrderAndLimit(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := BatchRecord{
			BatchID:   "batch-" + string(rune('a'+i)),
			StartTime: base.Add(time.Duration(i) * time.Minute),
			EndTime:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Status:    StatusSuccess,
		}
		if err := manager.SaveBatch(record); err != nil {
			t.Fatalf("Failed to save batch %d: %v", i, err)
		}
	}

	history, err := manager.GetHistory(3)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}
	// Newest first
	if history[0].BatchID != "batch-e" || history[2].BatchID != "batch-c" {
		t.Errorf("Unexpected order: %s .. %s", history[0].BatchID, history[2].BatchID)
	}

	if _, err := manager.GetHistory(0); err == nil {
		t.Error("Expected error for non-positive limit, got nil")
	}
}

func TestGetLastSuccess(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	got, err := manager.GetLastSuccess()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil with no history, got %+v", got)
	}

	base := time.Now().Add(-time.Hour)
	records := []BatchRecord{
		{BatchID: "b1", StartTime: base, EndTime: base, Status: StatusSuccess},
		{BatchID: "b2", StartTime: base.Add(time.Minute), EndTime: base.Add(time.Minute), Status: StatusSuccess},
		{BatchID: "b3", StartTime: base.Add(2 * time.Minute), EndTime: base.Add(2 * time.Minute), Status: StatusAborted},
	}
	for _, r := range records {
		if err := manager.SaveBatch(r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.BatchID, err)
		}
	}

	got, err = manager.GetLastSuccess()
	if err != nil {
		t.Fatalf("Failed to get last success: %v", err)
	}
	if got == nil || got.BatchID != "b2" {
		t.Errorf("Expected b2 as the last success, got %+v", got)
	}
}

func TestRecordFor(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	end := time.Now()

	result := &domain.BatchResult{
		BatchID:        "batch-x",
		Uploaded:       make([]domain.FileRecord, 3),
		FoldersCreated: 1,
		BytesSent:      512,
	}
	record := RecordFor(result, "folder-1", start, end, nil)
	if record.Status != StatusSuccess {
		t.Errorf("Expected success, got %s", record.Status)
	}
	if record.FilesUploaded != 3 || record.BytesSent != 512 || record.FolderID != "folder-1" {
		t.Errorf("Unexpected record: %+v", record)
	}

	result.Failed = []domain.UploadItem{{Name: "bad.pdf"}}
	record = RecordFor(result, "", start, end, nil)
	if record.Status != StatusPartial {
		t.Errorf("Expected partial, got %s", record.Status)
	}

	result.Uploaded = nil
	record = RecordFor(result, "", start, end, nil)
	if record.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", record.Status)
	}

	record = RecordFor(result, "", start, end, errors.New("aborted: bad.pdf"))
	if record.Status != StatusAborted || record.Error == "" {
		t.Errorf("Expected aborted with error text, got %+v", record)
	}
}
