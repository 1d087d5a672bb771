// Package progress turns per-file upload callbacks into a single
// aggregate percentage for a whole batch.
package progress

import (
	"fmt"
	"sync"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// Callback receives a snapshot after every progress change.
type Callback func(domain.BatchProgress)

// BatchReporter tracks one upload batch. Files are reported strictly in
// sequence, which is what keeps the aggregate monotonic: completed
// files contribute their full share, the in-flight file contributes its
// fraction of one share, pending files contribute nothing.
type BatchReporter struct {
	mu sync.Mutex

	batchID     string
	total       int
	done        int
	currentFile string
	currentPct  int
	aggregate   int // high-water mark, never decreased

	callback Callback
}

// NewBatchReporter creates a reporter for a batch of total files.
func NewBatchReporter(batchID string, total int, callback Callback) *BatchReporter {
	return &BatchReporter{
		batchID:  batchID,
		total:    total,
		callback: callback,
	}
}

// StartFile begins tracking the next file of the batch.
func (r *BatchReporter) StartFile(name string) {
	r.mu.Lock()
	r.currentFile = name
	r.currentPct = 0
	snapshot := r.snapshotLocked()
	cb := r.callback
	r.mu.Unlock()

	// Callback runs outside the lock so consumers may call back in.
	if cb != nil {
		cb(snapshot)
	}
}

// UpdateFile reports the current file's own 0-100 progress. Regressing
// values are ignored so a jittery transport can never move the
// aggregate backwards.
func (r *BatchReporter) UpdateFile(pct int) {
	r.mu.Lock()
	if pct < r.currentPct {
		r.mu.Unlock()
		return
	}
	if pct > 100 {
		pct = 100
	}
	r.currentPct = pct
	snapshot := r.snapshotLocked()
	cb := r.callback
	r.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// FinishFile marks the current file terminal (uploaded, failed or
// skipped) and moves its share into the completed portion.
func (r *BatchReporter) FinishFile() {
	r.mu.Lock()
	// The file's share moves wholesale into done; leaving currentPct at
	// 100 here would count it a second time.
	r.done++
	r.currentPct = 0
	r.currentFile = ""
	snapshot := r.snapshotLocked()
	cb := r.callback
	r.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns the current batch state.
func (r *BatchReporter) Snapshot() domain.BatchProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// snapshotLocked computes the aggregate as
// (done/total)*100 + (currentPct/100)*(100/total), clamped to the
// high-water mark. Integer form: (done*100 + currentPct) / total.
func (r *BatchReporter) snapshotLocked() domain.BatchProgress {
	agg := 100
	if r.total > 0 {
		agg = (r.done*100 + r.currentPct) / r.total
		if agg > 100 {
			agg = 100
		}
	}
	if agg < r.aggregate {
		agg = r.aggregate
	}
	r.aggregate = agg

	return domain.BatchProgress{
		BatchID:          r.batchID,
		CurrentFile:      r.currentFile,
		CurrentPercent:   r.currentPct,
		FilesDone:        r.done,
		FilesTotal:       r.total,
		AggregatePercent: agg,
	}
}

// FormatBytes renders a byte count for terminal output.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatBar renders a fixed-width progress bar for a 0-100 percentage.
func FormatBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	bar := make([]byte, width)
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			bar[i] = '='
		case i == filled && filled < width:
			bar[i] = '>'
		default:
			bar[i] = ' '
		}
	}
	return fmt.Sprintf("[%s] %3d%%", string(bar), percent)
}
