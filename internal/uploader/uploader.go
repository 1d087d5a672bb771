// Package uploader orchestrates multi-file and whole-directory uploads:
// sequential transfers with one aggregate progress stream, backend
// folder reconstruction for directory drops, and configurable
// partial-failure handling.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Jahid786-lang/vensar-drive/internal/api"
	"github.com/Jahid786-lang/vensar-drive/internal/core/pathplan"
	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
	"github.com/Jahid786-lang/vensar-drive/internal/progress"
)

// Backend is the slice of the api client the orchestrator drives.
type Backend interface {
	CreateFolder(ctx context.Context, req api.CreateFolderRequest) (domain.FolderRecord, error)
	UploadFile(ctx context.Context, req api.UploadRequest, onProgress api.ProgressFunc) (domain.FileRecord, error)
}

// Policy decides what happens to the rest of a batch when one file
// fails.
type Policy int

const (
	// AbortOnFailure stops at the first failing file; the remainder
	// is marked skipped and the batch error names the failing file.
	AbortOnFailure Policy = iota

	// ContinueOnError uploads the rest and reports the failed subset
	// in the result.
	ContinueOnError
)

// Source is one file to upload. Open is called exactly once, when the
// file's turn in the sequence comes.
type Source struct {
	Name string

	// RelativePath places the file within a directory upload
	// ("A/B/y.pdf"); empty or a bare name for flat uploads
	RelativePath string

	MimeType string
	Size     int64

	Open func() (io.ReadCloser, error)
}

// FromFile builds a Source for a file on disk, with relPath as its
// position inside the dropped directory ("" for flat uploads).
func FromFile(path, relPath string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return Source{
		Name:         filepath.Base(path),
		RelativePath: relPath,
		Size:         info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Orchestrator runs upload batches against a backend.
type Orchestrator struct {
	backend Backend
	scope   domain.Scope
	policy  Policy
	log     logger.Logger

	// invalidate is called after every committed mutation so already
	// uploaded work stays visible even when the batch later fails
	invalidate func()
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithPolicy sets the partial-failure policy.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithScope pins every upload and folder create to a service/project.
func WithScope(scope domain.Scope) Option {
	return func(o *Orchestrator) { o.scope = scope }
}

// WithInvalidator registers the cache-invalidation hook.
func WithInvalidator(fn func()) Option {
	return func(o *Orchestrator) { o.invalidate = fn }
}

// WithLogger replaces the orchestrator's logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator.
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:    backend,
		policy:     AbortOnFailure,
		log:        logger.Get().With("component", "uploader"),
		invalidate: func() {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UploadFiles uploads a flat selection into one target folder,
// strictly one file at a time. onProgress (optional) observes every
// byte-level change folded into the aggregate percentage.
func (o *Orchestrator) UploadFiles(ctx context.Context, files []Source, folderID string, onProgress progress.Callback) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	batchID := uuid.NewString()
	reporter := progress.NewBatchReporter(batchID, len(files), onProgress)
	result := newResult(batchID, files)
	for i := range result.Items {
		result.Items[i].FolderID = folderID
	}

	log := o.log.With("batch_id", batchID)
	log.Info("starting flat upload batch", "files", len(files), "folder_id", folderID)

	err := o.runSequence(ctx, result, reporter, func(item *domain.UploadItem, src Source) (domain.FileRecord, error) {
		return o.uploadOne(ctx, src, folderID, func(pct int) {
			item.Percent = pct
			reporter.UpdateFile(pct)
		})
	}, files)

	log.Info("flat upload batch finished", "succeeded", len(result.Uploaded), "failed", len(result.Failed))
	return result, err
}

// UploadDirectory uploads a dropped directory tree: it derives the
// minimal set of backend folders from the files' relative paths,
// creates them parent before child, then uploads each file into its
// resolved folder. Directory batches report coarse per-file completion
// rather than live byte progress.
func (o *Orchestrator) UploadDirectory(ctx context.Context, files []Source, rootFolderID string, onProgress progress.Callback) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	batchID := uuid.NewString()
	reporter := progress.NewBatchReporter(batchID, len(files), onProgress)
	result := newResult(batchID, files)

	log := o.log.With("batch_id", batchID)
	log.Info("starting directory upload batch", "files", len(files), "root_folder_id", rootFolderID)

	plan, created, err := o.createFolders(ctx, files, rootFolderID)
	result.FoldersCreated = created
	if err != nil {
		markAll(result, domain.UploadSkipped)
		return result, err
	}

	for i := range result.Items {
		result.Items[i].FolderID = plan.ResolveForFile(result.Items[i].RelativePath)
	}

	err = o.runSequence(ctx, result, reporter, func(item *domain.UploadItem, src Source) (domain.FileRecord, error) {
		return o.uploadOne(ctx, src, item.FolderID, nil)
	}, files)

	log.Info("directory upload batch finished",
		"folders_created", created, "succeeded", len(result.Uploaded), "failed", len(result.Failed))
	return result, err
}

// createFolders runs the planning and folder-creation passes. Prefixes
// arrive parents-first, so each prefix's parent id is always already in
// the plan (or is the upload root).
func (o *Orchestrator) createFolders(ctx context.Context, files []Source, rootFolderID string) (*pathplan.Plan, int, error) {
	relPaths := make([]string, len(files))
	for i, f := range files {
		relPaths[i] = f.RelativePath
	}

	plan := pathplan.NewPlan(rootFolderID)
	created := 0

	for _, prefix := range pathplan.Prefixes(relPaths) {
		if err := ctx.Err(); err != nil {
			return plan, created, err
		}

		// Depth ordering guarantees the parent prefix was processed
		// already, so this always resolves (to the root for depth 1).
		parentID, _ := plan.Resolve(prefix.Parent)

		folder, err := o.backend.CreateFolder(ctx, api.CreateFolderRequest{
			Name:      prefix.Name,
			ParentID:  parentID,
			ServiceID: o.scope.ServiceID,
			ProjectID: o.scope.ProjectID,
		})
		switch {
		case err == nil:
			plan.Set(prefix.Path, folder.ID)
			created++
			o.invalidate()
		case errors.Is(err, domain.ErrAlreadyExists):
			// Best effort: no lookup of the pre-existing folder's id,
			// files for this prefix land in its parent instead.
			o.log.Warn("folder already exists, falling back to parent",
				"path", prefix.Path, "parent_id", parentID)
			plan.Set(prefix.Path, parentID)
		default:
			return plan, created, fmt.Errorf("failed to create folder %s: %w", prefix.Path, err)
		}
	}

	return plan, created, nil
}

// runSequence drives the strictly sequential upload loop shared by
// both entry points.
func (o *Orchestrator) runSequence(
	ctx context.Context,
	result *domain.BatchResult,
	reporter *progress.BatchReporter,
	upload func(item *domain.UploadItem, src Source) (domain.FileRecord, error),
	files []Source,
) error {
	aborted := false
	var abortErr error

	for i := range files {
		item := &result.Items[i]

		if aborted {
			item.Status = domain.UploadSkipped
			continue
		}
		if err := ctx.Err(); err != nil {
			item.Status = domain.UploadSkipped
			aborted = true
			abortErr = err
			continue
		}

		item.Status = domain.UploadInProgress
		reporter.StartFile(item.Name)

		record, err := upload(item, files[i])
		if err != nil {
			item.Status = domain.UploadFailed
			item.Err = err
			result.Failed = append(result.Failed, *item)
			reporter.FinishFile()
			o.log.Warn("file upload failed", "file", item.Name, "error", err)

			if o.policy == AbortOnFailure {
				aborted = true
				abortErr = fmt.Errorf("%w: %s: %v", domain.ErrBatchAborted, item.Name, err)
			}
			continue
		}

		item.Status = domain.UploadSucceeded
		item.Percent = 100
		result.Uploaded = append(result.Uploaded, record)
		result.BytesSent += files[i].Size
		reporter.FinishFile()
		// Committed work is visible to readers immediately, even if
		// the batch fails later on.
		o.invalidate()
	}

	return abortErr
}

// uploadOne opens and streams a single source.
func (o *Orchestrator) uploadOne(ctx context.Context, src Source, folderID string, onProgress api.ProgressFunc) (domain.FileRecord, error) {
	body, err := src.Open()
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("failed to open %s: %w", src.Name, err)
	}
	defer body.Close()

	return o.backend.UploadFile(ctx, api.UploadRequest{
		Name:     src.Name,
		MimeType: src.MimeType,
		Size:     src.Size,
		Body:     body,
		FolderID: folderID,
		Scope:    o.scope,
	}, onProgress)
}

func newResult(batchID string, files []Source) *domain.BatchResult {
	result := &domain.BatchResult{
		BatchID: batchID,
		Items:   make([]domain.UploadItem, len(files)),
	}
	for i, f := range files {
		result.Items[i] = domain.UploadItem{
			Name:         f.Name,
			RelativePath: f.RelativePath,
			Status:       domain.UploadPending,
		}
	}
	return result
}

func markAll(result *domain.BatchResult, status domain.UploadStatus) {
	for i := range result.Items {
		if result.Items[i].Status == domain.UploadPending {
			result.Items[i].Status = status
		}
	}
}
