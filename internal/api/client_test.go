package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/testutil"
)

func newTestClient(t *testing.T, backend *testutil.FakeBackend, token string) *Client {
	t.Helper()

	c, err := NewClient(backend.URL(), StaticToken(token))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", nil); err == nil {
		t.Errorf("Expected error for empty base URL")
	}
	c, err := NewClient("http://localhost:8080/", nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if strings.HasSuffix(c.baseURL, "/") {
		t.Errorf("Expected trailing slash trimmed, got %q", c.baseURL)
	}
}

func TestClient_AuthRequired(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	backend.RequireToken = "good-token"

	bad := newTestClient(t, backend, "wrong")
	if _, err := bad.ListFolders(context.Background(), domain.Scope{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	good := newTestClient(t, backend, "good-token")
	if _, err := good.ListFolders(context.Background(), domain.Scope{}); err != nil {
		t.Errorf("Expected authorized listing to succeed, got %v", err)
	}
}

func TestCreateFolder_Conflict(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	ctx := context.Background()
	first, err := c.CreateFolder(ctx, CreateFolderRequest{Name: "Drawings"})
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if first.ID == "" || first.Name != "Drawings" {
		t.Errorf("Unexpected created record: %+v", first)
	}

	_, err = c.CreateFolder(ctx, CreateFolderRequest{Name: "Drawings"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for duplicate sibling, got %v", err)
	}
}

func TestCreateFolder_NameValidation(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	bad := []string{"", "a/b", `a\b`, "con?", " padded ", "..."}
	for _, name := range bad {
		if _, err := c.CreateFolder(context.Background(), CreateFolderRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Expected ErrValidation for %q, got %v", name, err)
		}
	}
	if backend.CreateFolderCalls != 0 {
		t.Errorf("Invalid names must not reach the backend, got %d calls", backend.CreateFolderCalls)
	}
}

func TestDeleteFolderRecursive(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	parent := backend.SeedFolder("parent", "", 0)
	child := backend.SeedFolder("child", parent, 0)
	backend.SeedFile("doc.pdf", child, []byte("pdf"))

	stats, err := c.DeleteFolderRecursive(context.Background(), parent)
	if err != nil {
		t.Fatalf("DeleteFolderRecursive failed: %v", err)
	}
	if stats.FoldersDeleted != 2 || stats.FilesDeleted != 1 {
		t.Errorf("Expected 2 folders / 1 file deleted, got %+v", stats)
	}
}

func TestUploadFile_Progress(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	content := testutil.RandomBytes(64 << 10)
	var reported []int
	record, err := c.UploadFile(context.Background(), UploadRequest{
		Name:     "survey.pdf",
		MimeType: "application/pdf",
		Size:     int64(len(content)),
		Body:     bytes.NewReader(content),
		FolderID: "folder-1",
	}, func(pct int) {
		reported = append(reported, pct)
	})
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}

	if record.Name != "survey.pdf" || record.Size != int64(len(content)) {
		t.Errorf("Unexpected created record: %+v", record)
	}
	if record.FolderID != "folder-1" {
		t.Errorf("Expected folder id carried through, got %q", record.FolderID)
	}
	if len(reported) == 0 {
		t.Fatalf("Expected progress callbacks")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Fatalf("Progress went backwards: %v", reported)
		}
	}
	if reported[len(reported)-1] != 100 {
		t.Errorf("Expected final progress 100, got %d", reported[len(reported)-1])
	}
}

func TestUploadFile_EmptyFileStillReaches100(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	var last int
	_, err := c.UploadFile(context.Background(), UploadRequest{
		Name: "empty.txt",
		Size: 0,
		Body: bytes.NewReader(nil),
	}, func(pct int) { last = pct })
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if last != 100 {
		t.Errorf("Expected 100 for empty file, got %d", last)
	}
}

func TestUploadFile_ServerFailure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	backend.FailUploadsNamed["broken.pdf"] = true
	c := newTestClient(t, backend, "")

	_, err := c.UploadFile(context.Background(), UploadRequest{
		Name: "broken.pdf",
		Size: 4,
		Body: strings.NewReader("data"),
	}, nil)
	if !errors.Is(err, domain.ErrRemote) {
		t.Errorf("Expected ErrRemote, got %v", err)
	}
}

func TestDownload_FollowsSignedRedirect(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	content := []byte("object-store-bytes")
	id := backend.SeedFile("plan.dwg", "", content)

	rc, err := c.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Downloaded content mismatch")
	}
}

func TestViewURL_LocalFile(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	id := backend.SeedFile("local.pdf", "", []byte("x"))
	backend.LocalOnlyFiles[id] = true

	result, err := c.ViewURL(context.Background(), id)
	if err != nil {
		t.Fatalf("ViewURL failed: %v", err)
	}
	if result.URL != nil {
		t.Errorf("Expected nil URL for locally stored file, got %v", *result.URL)
	}
}

func TestTimeoutBoundsJSONCallsOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/download") {
			// Streams longer than the timeout, but bytes keep moving.
			fl := w.(http.Flusher)
			for i := 0; i < 4; i++ {
				w.Write([]byte("chunk"))
				fl.Flush()
				time.Sleep(30 * time.Millisecond)
			}
			return
		}
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, nil, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := c.ListFolders(context.Background(), domain.Scope{}); err == nil {
		t.Errorf("Expected slow JSON endpoint to hit the deadline")
	}

	rc, err := c.Download(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Expected transfer to outlive the JSON timeout, read failed: %v", err)
	}
	if len(got) != 4*len("chunk") {
		t.Errorf("Expected full stream, got %d bytes", len(got))
	}
}

func TestMapStatus_Sentinels(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	c := newTestClient(t, backend, "")

	ctx := context.Background()
	if err := c.DeleteFolder(ctx, "no-such-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := c.RenameFile(ctx, "no-such-id", "x.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBackendMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"plain"}`, "plain"},
		{`{"message":["first","second"]}`, "first"},
		{`{"error":"fallback"}`, "fallback"},
		{`not-json`, ""},
	}
	for _, tt := range tests {
		if got := backendMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("backendMessage(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
