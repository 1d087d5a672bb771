package explorer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/Jahid786-lang/vensar-drive/internal/api"
	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/testutil"
	"github.com/Jahid786-lang/vensar-drive/internal/uploader"
)

func newTestExplorer(t *testing.T, backend *testutil.FakeBackend, opts ...Option) *Explorer {
	t.Helper()

	c, err := api.NewClient(backend.URL(), api.StaticToken(""))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return New(c, opts...)
}

func memSource(name, relPath, content string) uploader.Source {
	return uploader.Source{
		Name:         name,
		RelativePath: relPath,
		Size:         int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func crumbNames(crumbs []domain.Crumb) []string {
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	return names
}

func TestListServesFromCache(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	backend.SeedFolder("Drawings", "", 0)
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	first, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first.Folders) != 1 {
		t.Fatalf("Expected 1 folder, got %d", len(first.Folders))
	}

	if _, err := e.List(ctx); err != nil {
		t.Fatalf("Second List failed: %v", err)
	}
	if backend.ListCalls != 1 {
		t.Errorf("Expected the second List to hit the cache, got %d backend calls", backend.ListCalls)
	}
}

func TestMutationsInvalidateListings(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	if _, err := e.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if _, err := e.CreateFolder(ctx, "Reports"); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	listing, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List after create failed: %v", err)
	}
	if backend.ListCalls != 2 {
		t.Errorf("Expected the mutation to force a refetch, got %d backend calls", backend.ListCalls)
	}
	if len(listing.Folders) != 1 || listing.Folders[0].Name != "Reports" {
		t.Errorf("Expected the new folder in the listing, got %+v", listing.Folders)
	}
}

func TestCreateFolderRejectsBadNames(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	e := newTestExplorer(t, backend)

	if _, err := e.CreateFolder(context.Background(), "bad/name"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if backend.CreateFolderCalls != 0 {
		t.Errorf("Expected no backend call for an invalid name, got %d", backend.CreateFolderCalls)
	}
}

func TestBreadcrumbsFollowOpenFolder(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	a := backend.SeedFolder("A", "", 0)
	b := backend.SeedFolder("B", a, 0)
	c := backend.SeedFolder("C", b, 0)
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	crumbs, err := e.Breadcrumbs(ctx)
	if err != nil {
		t.Fatalf("Breadcrumbs failed: %v", err)
	}
	if got := crumbNames(crumbs); len(got) != 1 || got[0] != domain.RootFolderName {
		t.Errorf("Expected only Home at the root, got %v", got)
	}

	e.Open(c)
	crumbs, err = e.Breadcrumbs(ctx)
	if err != nil {
		t.Fatalf("Breadcrumbs failed: %v", err)
	}
	want := []string{domain.RootFolderName, "A", "B", "C"}
	got := crumbNames(crumbs)
	if len(got) != len(want) {
		t.Fatalf("Expected trail %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Crumb %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestTreeNestsAndOrders(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	a := backend.SeedFolder("A", "", 2)
	backend.SeedFolder("B", "", 1)
	backend.SeedFolder("A1", a, 0)
	e := newTestExplorer(t, backend)

	roots, err := e.Tree(context.Background())
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(roots))
	}
	if roots[0].Name != "B" || roots[1].Name != "A" {
		t.Errorf("Expected order [B A], got [%s %s]", roots[0].Name, roots[1].Name)
	}
	if len(roots[1].Children) != 1 || roots[1].Children[0].Name != "A1" {
		t.Errorf("Expected A1 nested under A, got %+v", roots[1].Children)
	}
}

func TestEffectiveFolderIDEnsuresProjectRootOnce(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	scope := domain.Scope{ServiceID: "svc-1", ProjectID: "proj-1"}
	e := newTestExplorer(t, backend, WithScope(scope))

	ctx := context.Background()
	id, err := e.EffectiveFolderID(ctx)
	if err != nil {
		t.Fatalf("EffectiveFolderID failed: %v", err)
	}
	if id == domain.RootFolderID {
		t.Fatal("Expected a project root folder id, got the global root")
	}

	again, err := e.EffectiveFolderID(ctx)
	if err != nil {
		t.Fatalf("Second EffectiveFolderID failed: %v", err)
	}
	if again != id {
		t.Errorf("Expected the memoized root %s, got %s", id, again)
	}

	folder, err := e.CreateFolder(ctx, "Site Photos")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if folder.ParentID != id {
		t.Errorf("Expected the folder under the project root %s, got parent %q", id, folder.ParentID)
	}

	// An explicitly opened folder wins over the project root.
	e.Open(folder.ID)
	opened, err := e.EffectiveFolderID(ctx)
	if err != nil {
		t.Fatalf("EffectiveFolderID failed: %v", err)
	}
	if opened != folder.ID {
		t.Errorf("Expected the open folder %s, got %s", folder.ID, opened)
	}
}

func TestDeleteRecursiveResetsNavigationInsideSubtree(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	a := backend.SeedFolder("A", "", 0)
	b := backend.SeedFolder("B", a, 0)
	backend.SeedFile("doc.pdf", b, []byte("x"))
	e := newTestExplorer(t, backend)

	e.Open(b)
	stats, err := e.DeleteFolderRecursive(context.Background(), a)
	if err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}
	if stats.FoldersDeleted != 2 || stats.FilesDeleted != 1 {
		t.Errorf("Expected stats 2 folders/1 file, got %+v", stats)
	}
	if got := e.CurrentFolderID(); got != domain.RootFolderID {
		t.Errorf("Expected navigation reset to the root, got %q", got)
	}
}

func TestDeleteRecursiveKeepsUnrelatedNavigation(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	a := backend.SeedFolder("A", "", 0)
	other := backend.SeedFolder("Other", "", 0)
	e := newTestExplorer(t, backend)

	e.Open(other)
	if _, err := e.DeleteFolderRecursive(context.Background(), a); err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}
	if got := e.CurrentFolderID(); got != other {
		t.Errorf("Expected navigation to stay at %s, got %q", other, got)
	}
}

func TestDeleteOpenFolderResetsNavigation(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	a := backend.SeedFolder("A", "", 0)
	e := newTestExplorer(t, backend)

	e.Open(a)
	if err := e.DeleteFolder(context.Background(), a); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}
	if got := e.CurrentFolderID(); got != domain.RootFolderID {
		t.Errorf("Expected navigation reset to the root, got %q", got)
	}
}

func TestDeleteFileDropsSelectionAndCache(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	id := backend.SeedFile("doc.pdf", "", []byte("x"))
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	if _, err := e.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	e.Select(id)

	if err := e.DeleteFile(ctx, id); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if len(e.Selection()) != 0 {
		t.Errorf("Expected the deleted file out of the selection, got %v", e.Selection())
	}

	listing, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List after delete failed: %v", err)
	}
	if len(listing.Files) != 0 {
		t.Errorf("Expected an empty listing after delete, got %d files", len(listing.Files))
	}
	if backend.ListCalls != 2 {
		t.Errorf("Expected a refetch after the delete, got %d backend calls", backend.ListCalls)
	}
}

func TestSearchCachedAndInvalidated(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	backend.SeedFile("site-plan.pdf", "", []byte("x"))
	backend.SeedFolder("Planning", "", 0)
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	result, err := e.Search(ctx, "plan")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Files) != 1 || len(result.Folders) != 1 {
		t.Errorf("Expected 1 file and 1 folder, got %d/%d", len(result.Files), len(result.Folders))
	}

	if _, err := e.Search(ctx, "plan"); err != nil {
		t.Fatalf("Second Search failed: %v", err)
	}
	if backend.SearchCalls != 1 {
		t.Errorf("Expected the repeated query served from cache, got %d calls", backend.SearchCalls)
	}

	// Mutations cover the search family too.
	if _, err := e.CreateFolder(ctx, "Planned Works"); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if _, err := e.Search(ctx, "plan"); err != nil {
		t.Fatalf("Search after mutation failed: %v", err)
	}
	if backend.SearchCalls != 2 {
		t.Errorf("Expected a refetch after the mutation, got %d calls", backend.SearchCalls)
	}
}

func TestSearchBlankQuerySkipsBackend(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	e := newTestExplorer(t, backend)

	result, err := e.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Files) != 0 || len(result.Folders) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
	if backend.SearchCalls != 0 {
		t.Errorf("Expected no backend call for a blank query, got %d", backend.SearchCalls)
	}
}

func TestUploadLandsInOpenFolder(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	target := backend.SeedFolder("Drawings", "", 0)
	e := newTestExplorer(t, backend)

	ctx := context.Background()
	if _, err := e.List(ctx); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	e.Open(target)
	result, err := e.UploadFiles(ctx, []uploader.Source{memSource("plan.pdf", "", "content")}, nil)
	if err != nil {
		t.Fatalf("UploadFiles failed: %v", err)
	}
	if !result.Succeeded() {
		t.Fatal("Expected a successful batch")
	}

	files := backend.Files()
	if len(files) != 1 || files[0].FolderID != target {
		t.Errorf("Expected plan.pdf in %s, got %+v", target, files)
	}

	// The upload invalidated listings, so the next read refetches.
	if _, err := e.List(ctx); err != nil {
		t.Fatalf("List after upload failed: %v", err)
	}
	if backend.ListCalls != 2 {
		t.Errorf("Expected a refetch after the upload, got %d backend calls", backend.ListCalls)
	}
}

func TestUploadDirectoryUnderOpenFolder(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	target := backend.SeedFolder("Project", "", 0)
	e := newTestExplorer(t, backend)

	e.Open(target)
	result, err := e.UploadDirectory(context.Background(), []uploader.Source{
		memSource("x.pdf", "A/x.pdf", "xx"),
	}, nil)
	if err != nil {
		t.Fatalf("UploadDirectory failed: %v", err)
	}
	if result.FoldersCreated != 1 {
		t.Errorf("Expected 1 folder created, got %d", result.FoldersCreated)
	}

	folderA, ok := backend.FolderByName("A")
	if !ok {
		t.Fatal("Folder A was not created")
	}
	if folderA.ParentID != target {
		t.Errorf("Expected A under the open folder %s, got parent %q", target, folderA.ParentID)
	}
}

func TestDownloadStreamsContent(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	content := []byte("blueprint-bytes")
	id := backend.SeedFile("plan.dwg", "", content)
	e := newTestExplorer(t, backend)

	var buf bytes.Buffer
	n, err := e.Download(context.Background(), id, &buf)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != int64(len(content)) || !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("Expected %d bytes %q, got %d bytes %q", len(content), content, n, buf.Bytes())
	}
}

func TestSelectionAndViewMode(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	e := newTestExplorer(t, backend)

	if e.ViewMode() != ViewList {
		t.Errorf("Expected list as the default view, got %s", e.ViewMode())
	}
	e.SetViewMode(ViewGrid)
	if e.ViewMode() != ViewGrid {
		t.Errorf("Expected grid view, got %s", e.ViewMode())
	}

	e.Select("file-1")
	e.Select("file-2")
	e.Deselect("file-1")
	if got := e.Selection(); len(got) != 1 || got[0] != "file-2" {
		t.Errorf("Expected selection [file-2], got %v", got)
	}

	e.Select("file-3")
	sel := e.Selection()
	sort.Strings(sel)
	if len(sel) != 2 {
		t.Fatalf("Expected 2 selected, got %v", sel)
	}

	// Navigation drops the selection.
	e.Open("folder-9")
	if len(e.Selection()) != 0 {
		t.Errorf("Expected an empty selection after navigation, got %v", e.Selection())
	}
}
