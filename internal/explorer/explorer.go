// Package explorer is the stateful document-view layer: it tracks
// which folder is open, serves listings and folder trees through a
// read cache, and routes every mutation through the backend client
// while keeping the cache coherent.
package explorer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Jahid786-lang/vensar-drive/internal/api"
	"github.com/Jahid786-lang/vensar-drive/internal/core/ancestry"
	"github.com/Jahid786-lang/vensar-drive/internal/core/tree"
	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
	"github.com/Jahid786-lang/vensar-drive/internal/preview"
	"github.com/Jahid786-lang/vensar-drive/internal/progress"
	"github.com/Jahid786-lang/vensar-drive/internal/rescache"
	"github.com/Jahid786-lang/vensar-drive/internal/uploader"
)

// Listing freshness mirrors how often folder contents change versus
// the folder structure itself.
const (
	DefaultListTTL = 30 * time.Second
	DefaultTreeTTL = 2 * time.Minute
)

// ViewMode is how the file area renders.
type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewGrid ViewMode = "grid"
)

// Explorer drives one user's document view.
type Explorer struct {
	client   *api.Client
	cache    *rescache.Cache
	previews *preview.Cache
	uploads  *uploader.Orchestrator
	scope    domain.Scope
	listTTL  time.Duration
	treeTTL  time.Duration
	log      logger.Logger

	// construction-time knobs consumed by New
	previewOpts  []preview.Option
	uploadPolicy uploader.Policy

	mu              sync.Mutex
	currentFolderID string
	viewMode        ViewMode
	selection       map[string]struct{}
	projectRootID   string
	projectRootOK   bool
}

// Option customizes an Explorer.
type Option func(*Explorer)

// WithScope pins the explorer to a service/project subtree.
func WithScope(scope domain.Scope) Option {
	return func(e *Explorer) { e.scope = scope }
}

// WithListTTL overrides listing freshness.
func WithListTTL(ttl time.Duration) Option {
	return func(e *Explorer) {
		if ttl > 0 {
			e.listTTL = ttl
		}
	}
}

// WithTreeTTL overrides folder-tree freshness.
func WithTreeTTL(ttl time.Duration) Option {
	return func(e *Explorer) {
		if ttl > 0 {
			e.treeTTL = ttl
		}
	}
}

// WithCache replaces the read cache, used by tests to inject a clock.
func WithCache(c *rescache.Cache) Option {
	return func(e *Explorer) { e.cache = c }
}

// WithPreviewOptions forwards options to the signed-URL cache.
func WithPreviewOptions(opts ...preview.Option) Option {
	return func(e *Explorer) { e.previewOpts = append(e.previewOpts, opts...) }
}

// WithUploadPolicy sets the batch partial-failure policy.
func WithUploadPolicy(p uploader.Policy) Option {
	return func(e *Explorer) { e.uploadPolicy = p }
}

// WithLogger replaces the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Explorer) { e.log = l }
}

// New creates an explorer over the given client, opened at the root.
func New(client *api.Client, opts ...Option) *Explorer {
	e := &Explorer{
		client:    client,
		cache:     rescache.New(),
		scope:     domain.Scope{},
		listTTL:   DefaultListTTL,
		treeTTL:   DefaultTreeTTL,
		log:       logger.Get().With("component", "explorer"),
		viewMode:  ViewList,
		selection: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.previews = preview.NewCache(client, e.previewOpts...)
	e.uploads = uploader.New(client,
		uploader.WithScope(e.scope),
		uploader.WithPolicy(e.uploadPolicy),
		uploader.WithInvalidator(e.invalidateListings),
		uploader.WithLogger(e.log.With("component", "uploader")),
	)
	return e
}

// --- Navigation state ---

// Open navigates into a folder. The empty id opens the scope root.
// Selection does not survive navigation.
func (e *Explorer) Open(folderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentFolderID = folderID
	e.selection = make(map[string]struct{})
}

// CurrentFolderID returns the open folder id, "" for the root view.
func (e *Explorer) CurrentFolderID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentFolderID
}

// SetViewMode switches between list and grid rendering.
func (e *Explorer) SetViewMode(mode ViewMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewMode = mode
}

// ViewMode returns the active rendering mode.
func (e *Explorer) ViewMode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewMode
}

// Select adds an item id to the selection.
func (e *Explorer) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection[id] = struct{}{}
}

// Deselect removes an item id from the selection.
func (e *Explorer) Deselect(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.selection, id)
}

// ClearSelection empties the selection.
func (e *Explorer) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = make(map[string]struct{})
}

// Selection returns the selected item ids.
func (e *Explorer) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.selection))
	for id := range e.selection {
		out = append(out, id)
	}
	return out
}

// EffectiveFolderID resolves where reads and writes actually land:
// the open folder when one is set, otherwise the scope's project root
// (created on first use), otherwise the global root.
func (e *Explorer) EffectiveFolderID(ctx context.Context) (string, error) {
	e.mu.Lock()
	current := e.currentFolderID
	scope := e.scope
	rootID, rootOK := e.projectRootID, e.projectRootOK
	e.mu.Unlock()

	if current != domain.RootFolderID {
		return current, nil
	}
	if scope.IsZero() {
		return domain.RootFolderID, nil
	}
	if rootOK {
		return rootID, nil
	}

	root, err := e.client.EnsureProjectRoot(ctx, scope.ServiceID, scope.ProjectID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}

	e.mu.Lock()
	e.projectRootID = root.ID
	e.projectRootOK = true
	e.mu.Unlock()
	return root.ID, nil
}

// --- Reads ---

// List returns the open folder's contents, cached for the listing TTL.
// A stale listing is returned alongside the error when a refresh fails.
func (e *Explorer) List(ctx context.Context) (domain.DocumentListing, error) {
	folderID, err := e.EffectiveFolderID(ctx)
	if err != nil {
		return domain.DocumentListing{}, err
	}

	key := rescache.Key{"documents", folderID, e.scope.ServiceID, e.scope.ProjectID}
	return rescache.Get(ctx, e.cache, key, e.listTTL, func(ctx context.Context) (domain.DocumentListing, error) {
		return e.client.ListDocuments(ctx, api.ListOptions{FolderID: folderID, Scope: e.scope})
	})
}

// Tree returns the full folder forest for the scope, ordered and
// nested, cached for the tree TTL.
func (e *Explorer) Tree(ctx context.Context) ([]*domain.FolderNode, error) {
	flat, err := e.flatFolders(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Build(flat), nil
}

// Breadcrumbs returns the Home-rooted trail to the open folder.
func (e *Explorer) Breadcrumbs(ctx context.Context) ([]domain.Crumb, error) {
	e.mu.Lock()
	current := e.currentFolderID
	e.mu.Unlock()

	if current == domain.RootFolderID {
		return []domain.Crumb{domain.HomeCrumb()}, nil
	}

	flat, err := e.flatFolders(ctx)
	if err != nil {
		return nil, err
	}
	return ancestry.Resolve(current, tree.Index(flat)), nil
}

// Search runs a free-text search across the scope. Results share the
// listing TTL and the "documents" invalidation prefix; blank queries
// return empty without touching the backend.
func (e *Explorer) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{
			Folders: []domain.FolderRecord{},
			Files:   []domain.FileRecord{},
		}, nil
	}

	key := rescache.Key{"documents", "search", query, e.scope.ServiceID, e.scope.ProjectID}
	return rescache.Get(ctx, e.cache, key, e.listTTL, func(ctx context.Context) (domain.SearchResult, error) {
		return e.client.SearchDocuments(ctx, query, e.scope)
	})
}

func (e *Explorer) flatFolders(ctx context.Context) ([]domain.FolderRecord, error) {
	key := rescache.Key{"folders", "flat", e.scope.ServiceID, e.scope.ProjectID}
	return rescache.Get(ctx, e.cache, key, e.treeTTL, func(ctx context.Context) ([]domain.FolderRecord, error) {
		return e.client.ListFolders(ctx, e.scope)
	})
}

// --- Folder mutations ---

// CreateFolder creates a folder inside the open folder.
func (e *Explorer) CreateFolder(ctx context.Context, name string) (domain.FolderRecord, error) {
	parentID, err := e.EffectiveFolderID(ctx)
	if err != nil {
		return domain.FolderRecord{}, err
	}

	folder, err := e.client.CreateFolder(ctx, api.CreateFolderRequest{
		Name:      name,
		ParentID:  parentID,
		ServiceID: e.scope.ServiceID,
		ProjectID: e.scope.ProjectID,
	})
	if err != nil {
		return domain.FolderRecord{}, err
	}
	e.invalidateListings()
	return folder, nil
}

// RenameFolder renames a folder.
func (e *Explorer) RenameFolder(ctx context.Context, id, name string) (domain.FolderRecord, error) {
	if err := domain.ValidateName(name); err != nil {
		return domain.FolderRecord{}, err
	}
	folder, err := e.client.UpdateFolder(ctx, id, api.UpdateFolderRequest{Name: &name})
	if err != nil {
		return domain.FolderRecord{}, err
	}
	e.invalidateListings()
	return folder, nil
}

// MoveFolder re-parents a folder. The empty parent id moves it to the
// scope root.
func (e *Explorer) MoveFolder(ctx context.Context, id, newParentID string) (domain.FolderRecord, error) {
	folder, err := e.client.UpdateFolder(ctx, id, api.UpdateFolderRequest{ParentID: &newParentID})
	if err != nil {
		return domain.FolderRecord{}, err
	}
	e.invalidateListings()
	return folder, nil
}

// DeleteFolder removes an empty folder. Deleting the open folder
// resets navigation to the root.
func (e *Explorer) DeleteFolder(ctx context.Context, id string) error {
	if err := e.client.DeleteFolder(ctx, id); err != nil {
		return err
	}
	e.afterFolderDelete(e.CurrentFolderID() == id)
	return nil
}

// DeleteFolderRecursive removes a folder with everything under it and
// reports what was deleted. When the open folder is the target or
// anywhere inside it, navigation resets to the root.
func (e *Explorer) DeleteFolderRecursive(ctx context.Context, id string) (domain.DeleteStats, error) {
	// The subtree check needs the ancestry of the open folder, which
	// is only resolvable before the delete empties it out.
	doomed := e.openFolderWithin(ctx, id)

	stats, err := e.client.DeleteFolderRecursive(ctx, id)
	if err != nil {
		return domain.DeleteStats{}, err
	}

	e.afterFolderDelete(doomed)
	e.log.Info("deleted folder subtree",
		"folder_id", id, "folders", stats.FoldersDeleted, "files", stats.FilesDeleted)
	return stats, nil
}

// openFolderWithin reports whether the open folder is id or one of its
// descendants. Resolution failures err toward a direct-match check so
// a listing outage never blocks the delete.
func (e *Explorer) openFolderWithin(ctx context.Context, id string) bool {
	e.mu.Lock()
	current := e.currentFolderID
	e.mu.Unlock()

	if current == id {
		return true
	}
	if current == domain.RootFolderID {
		return false
	}

	flat, err := e.flatFolders(ctx)
	if err != nil {
		return false
	}
	for _, crumb := range ancestry.Resolve(current, tree.Index(flat)) {
		if crumb.ID == id {
			return true
		}
	}
	return false
}

func (e *Explorer) afterFolderDelete(resetNav bool) {
	if resetNav {
		e.mu.Lock()
		e.currentFolderID = domain.RootFolderID
		e.selection = make(map[string]struct{})
		e.mu.Unlock()
	}
	e.invalidateListings()
}

// --- File mutations ---

// RenameFile renames a file.
func (e *Explorer) RenameFile(ctx context.Context, id, name string) (domain.FileRecord, error) {
	file, err := e.client.RenameFile(ctx, id, name)
	if err != nil {
		return domain.FileRecord{}, err
	}
	e.invalidateDocuments()
	return file, nil
}

// MoveFile moves a file into another folder, "" for the scope root.
func (e *Explorer) MoveFile(ctx context.Context, id, folderID string) (domain.FileRecord, error) {
	file, err := e.client.MoveFile(ctx, id, folderID)
	if err != nil {
		return domain.FileRecord{}, err
	}
	e.invalidateDocuments()
	return file, nil
}

// DeleteFile removes a file and drops its cached preview.
func (e *Explorer) DeleteFile(ctx context.Context, id string) error {
	if err := e.client.DeleteFile(ctx, id); err != nil {
		return err
	}
	e.previews.Invalidate(id)
	e.mu.Lock()
	delete(e.selection, id)
	e.mu.Unlock()
	e.invalidateDocuments()
	return nil
}

// --- Content access ---

// Preview returns a renderable source for a file, served from the
// signed-URL cache.
func (e *Explorer) Preview(ctx context.Context, fileID string) (preview.Source, error) {
	return e.previews.Source(ctx, fileID)
}

// Download streams a file's content into w and returns the byte count.
func (e *Explorer) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	body, err := e.client.Download(ctx, fileID)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to stream file %s: %w", fileID, err)
	}
	return n, nil
}

// --- Uploads ---

// UploadFiles uploads a flat selection into the open folder.
func (e *Explorer) UploadFiles(ctx context.Context, files []uploader.Source, onProgress progress.Callback) (*domain.BatchResult, error) {
	folderID, err := e.EffectiveFolderID(ctx)
	if err != nil {
		return nil, err
	}
	return e.uploads.UploadFiles(ctx, files, folderID, onProgress)
}

// UploadDirectory uploads a directory tree rooted at the open folder,
// recreating its structure on the backend.
func (e *Explorer) UploadDirectory(ctx context.Context, files []uploader.Source, onProgress progress.Callback) (*domain.BatchResult, error) {
	folderID, err := e.EffectiveFolderID(ctx)
	if err != nil {
		return nil, err
	}
	return e.uploads.UploadDirectory(ctx, files, folderID, onProgress)
}

// --- Cache coherence ---

// Refresh drops every cached read so the next access refetches.
func (e *Explorer) Refresh() {
	e.cache.Invalidate(nil)
	e.previews.Clear()
}

func (e *Explorer) invalidateListings() {
	e.cache.Invalidate(rescache.Key{"documents"})
	e.cache.Invalidate(rescache.Key{"folders"})
}

func (e *Explorer) invalidateDocuments() {
	e.cache.Invalidate(rescache.Key{"documents"})
}
