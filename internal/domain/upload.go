package domain

// UploadStatus is the terminal state of one file within a batch.
type UploadStatus int

const (
	UploadPending UploadStatus = iota
	UploadInProgress
	UploadSucceeded
	UploadFailed
	// UploadSkipped marks files never attempted because an earlier
	// failure aborted the batch
	UploadSkipped
)

// String returns the string representation of the status.
func (s UploadStatus) String() string {
	switch s {
	case UploadPending:
		return "pending"
	case UploadInProgress:
		return "uploading"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	case UploadSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// UploadItem tracks one file of a batch.
type UploadItem struct {
	// Name is the file's base name
	Name string

	// RelativePath is the slash-separated path within a directory
	// upload (e.g. "A/B/y.pdf"); empty for flat uploads
	RelativePath string

	// FolderID is the resolved target folder, set once planning is done
	FolderID string

	// Percent is per-file progress 0-100
	Percent int

	Status UploadStatus

	// Err is set when Status is UploadFailed
	Err error
}

// BatchProgress is one snapshot of a running batch, emitted after every
// per-file progress change.
type BatchProgress struct {
	// BatchID identifies the batch across snapshots
	BatchID string

	// CurrentFile is the name of the file being transferred
	CurrentFile string

	// CurrentPercent is the current file's own progress 0-100
	CurrentPercent int

	// FilesDone counts files that reached a terminal state
	FilesDone  int
	FilesTotal int

	// AggregatePercent weights per-file progress into a single
	// monotonically non-decreasing 0-100 value for the whole batch
	AggregatePercent int
}

// BatchResult is the final outcome of a batch.
type BatchResult struct {
	BatchID string

	Items []UploadItem

	// Uploaded are the records created for successful items, in upload order
	Uploaded []FileRecord

	// FoldersCreated counts backend folders created during a directory upload
	FoldersCreated int

	// BytesSent is the total payload size of successful uploads
	BytesSent int64

	// Failed names items that did not upload; empty on full success
	Failed []UploadItem
}

// Succeeded returns true when every item uploaded.
func (r *BatchResult) Succeeded() bool {
	return len(r.Failed) == 0
}
