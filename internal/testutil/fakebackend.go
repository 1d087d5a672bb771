package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// FakeBackend is an in-memory stand-in for the document backend,
// serving the REST surface the api client speaks over httptest.
// All exported fields are read or tweaked by tests under the same
// goroutine that drives the client, guarded by mu for safety.
type FakeBackend struct {
	Server *httptest.Server

	mu           sync.Mutex
	folders      map[string]domain.FolderRecord
	files        map[string]domain.FileRecord
	bodies       map[string][]byte
	nextID       int
	projectRoots map[string]string // serviceID/projectID -> folder id

	// Call counters
	ViewURLCalls      int
	DownloadCalls     int
	UploadCalls       int
	ListCalls         int
	CreateFolderCalls int
	SearchCalls       int

	// Failure injection
	FailUploadsNamed map[string]bool // file name -> fail with 500
	FailCreateFolder bool            // every create returns 500
	FailViewURL      bool            // view-url returns 500
	LocalOnlyFiles   map[string]bool // file id -> view-url returns null
	RequireToken     string          // non-empty: 401 unless bearer matches
}

// NewFakeBackend starts the fake server. Callers must Close it.
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		folders:      make(map[string]domain.FolderRecord),
		files:        make(map[string]domain.FileRecord),
		bodies:       make(map[string][]byte),
		projectRoots: make(map[string]string),

		FailUploadsNamed: make(map[string]bool),
		LocalOnlyFiles:   make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", b.handleListDocuments)
	mux.HandleFunc("GET /documents/search", b.handleSearch)
	mux.HandleFunc("GET /folders", b.handleListFolders)
	mux.HandleFunc("POST /folders", b.handleCreateFolder)
	mux.HandleFunc("POST /folders/project-root", b.handleProjectRoot)
	mux.HandleFunc("PATCH /folders/{id}", b.handleUpdateFolder)
	mux.HandleFunc("DELETE /folders/{id}", b.handleDeleteFolder)
	mux.HandleFunc("DELETE /folders/{id}/recursive", b.handleDeleteRecursive)
	mux.HandleFunc("POST /files/upload", b.handleUpload)
	mux.HandleFunc("PATCH /files/{id}", b.handleUpdateFile)
	mux.HandleFunc("DELETE /files/{id}", b.handleDeleteFile)
	mux.HandleFunc("GET /files/{id}/view-url", b.handleViewURL)
	mux.HandleFunc("GET /files/{id}/download", b.handleDownload)
	mux.HandleFunc("GET /signed/{id}", b.handleSigned)

	b.Server = httptest.NewServer(b.withAuth(mux))
	return b
}

// Close shuts the server down.
func (b *FakeBackend) Close() {
	b.Server.Close()
}

// URL returns the backend base URL.
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

func (b *FakeBackend) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		required := b.RequireToken
		b.mu.Unlock()
		// The signed path simulates pre-authorized storage access.
		if required != "" && !strings.HasPrefix(r.URL.Path, "/signed/") {
			if r.Header.Get("Authorization") != "Bearer "+required {
				writeError(w, http.StatusUnauthorized, "missing or invalid token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SeedFolder registers a folder and returns its id.
func (b *FakeBackend) SeedFolder(name, parentID string, order int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addFolderLocked(name, parentID, order)
}

// SeedFile registers a file with content and returns its id.
func (b *FakeBackend) SeedFile(name, folderID string, content []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := fmt.Sprintf("file-%d", b.nextID)
	b.files[id] = domain.FileRecord{
		ID:       id,
		Name:     name,
		MimeType: "application/octet-stream",
		Size:     int64(len(content)),
		FolderID: folderID,
	}
	b.bodies[id] = content
	return id
}

// Folders returns a snapshot of all folder records.
func (b *FakeBackend) Folders() []domain.FolderRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.FolderRecord, 0, len(b.folders))
	for _, f := range b.folders {
		out = append(out, f)
	}
	return out
}

// Files returns a snapshot of all file records.
func (b *FakeBackend) Files() []domain.FileRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.FileRecord, 0, len(b.files))
	for _, f := range b.files {
		out = append(out, f)
	}
	return out
}

// FolderByName finds a folder by name, empty record when absent.
func (b *FakeBackend) FolderByName(name string) (domain.FolderRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range b.folders {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FolderRecord{}, false
}

func (b *FakeBackend) addFolderLocked(name, parentID string, order int) string {
	b.nextID++
	id := fmt.Sprintf("folder-%d", b.nextID)
	path := "/" + name
	if parent, ok := b.folders[parentID]; ok {
		path = parent.Path + "/" + name
	}
	b.folders[id] = domain.FolderRecord{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Path:     path,
		Order:    order,
	}
	return id
}

func (b *FakeBackend) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ListCalls++

	folderID := r.URL.Query().Get("folderId")
	listing := domain.DocumentListing{
		Folders: []domain.FolderRecord{},
		Files:   []domain.FileRecord{},
	}

	serviceID := r.URL.Query().Get("serviceId")
	projectID := r.URL.Query().Get("projectId")
	if rootID, ok := b.projectRoots[serviceID+"/"+projectID]; ok {
		root := b.folders[rootID]
		listing.RootFolder = &root
		if folderID == "" {
			folderID = rootID
		}
	}

	for _, f := range b.folders {
		if f.ParentID == folderID {
			listing.Folders = append(listing.Folders, f)
		}
	}
	for _, f := range b.files {
		if f.FolderID == folderID {
			listing.Files = append(listing.Files, f)
		}
	}
	writeJSON(w, http.StatusOK, listing)
}

func (b *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SearchCalls++

	q := strings.ToLower(r.URL.Query().Get("q"))
	result := domain.SearchResult{Folders: []domain.FolderRecord{}, Files: []domain.FileRecord{}}
	for _, f := range b.folders {
		if strings.Contains(strings.ToLower(f.Name), q) {
			result.Folders = append(result.Folders, f)
		}
	}
	for _, f := range b.files {
		if strings.Contains(strings.ToLower(f.Name), q) {
			result.Files = append(result.Files, f)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (b *FakeBackend) handleListFolders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.FolderRecord, 0, len(b.folders))
	for _, f := range b.folders {
		out = append(out, f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CreateFolderCalls++

	if b.FailCreateFolder {
		writeError(w, http.StatusInternalServerError, "backend unavailable")
		return
	}

	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	for _, f := range b.folders {
		if f.ParentID == req.ParentID && f.Name == req.Name {
			writeError(w, http.StatusConflict, "folder already exists")
			return
		}
	}

	id := b.addFolderLocked(req.Name, req.ParentID, 0)
	writeJSON(w, http.StatusCreated, b.folders[id])
}

func (b *FakeBackend) handleProjectRoot(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var req struct {
		ServiceID string `json:"serviceId"`
		ProjectID string `json:"projectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	key := req.ServiceID + "/" + req.ProjectID
	if id, ok := b.projectRoots[key]; ok {
		writeJSON(w, http.StatusOK, b.folders[id])
		return
	}
	id := b.addFolderLocked(req.ProjectID, "", 0)
	b.projectRoots[key] = id
	writeJSON(w, http.StatusCreated, b.folders[id])
}

func (b *FakeBackend) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	folder, ok := b.folders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		ParentID *string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.ParentID != nil {
		folder.ParentID = *req.ParentID
	}
	b.folders[id] = folder
	writeJSON(w, http.StatusOK, folder)
}

func (b *FakeBackend) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := b.folders[id]; !ok {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	for _, f := range b.folders {
		if f.ParentID == id {
			writeError(w, http.StatusBadRequest, "folder is not empty")
			return
		}
	}
	for _, f := range b.files {
		if f.FolderID == id {
			writeError(w, http.StatusBadRequest, "folder is not empty")
			return
		}
	}
	delete(b.folders, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handleDeleteRecursive(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := b.folders[id]; !ok {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}

	stats := domain.DeleteStats{}
	var remove func(folderID string)
	remove = func(folderID string) {
		for cid, f := range b.folders {
			if f.ParentID == folderID {
				remove(cid)
			}
		}
		for fid, f := range b.files {
			if f.FolderID == folderID {
				delete(b.files, fid)
				delete(b.bodies, fid)
				stats.FilesDeleted++
			}
		}
		delete(b.folders, folderID)
		stats.FoldersDeleted++
	}
	remove(id)
	writeJSON(w, http.StatusOK, stats)
}

func (b *FakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part missing")
		return
	}
	defer part.Close()
	content, err := io.ReadAll(part)
	if err != nil {
		writeError(w, http.StatusBadRequest, "truncated file part")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.UploadCalls++

	if b.FailUploadsNamed[header.Filename] {
		writeError(w, http.StatusInternalServerError, "storage write failed")
		return
	}

	b.nextID++
	id := fmt.Sprintf("file-%d", b.nextID)
	record := domain.FileRecord{
		ID:       id,
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     int64(len(content)),
		FolderID: r.FormValue("folderId"),
	}
	b.files[id] = record
	b.bodies[id] = content
	writeJSON(w, http.StatusCreated, record)
}

func (b *FakeBackend) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	file, ok := b.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		FolderID *string `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	if req.Name != nil {
		file.Name = *req.Name
	}
	if req.FolderID != nil {
		file.FolderID = *req.FolderID
	}
	b.files[id] = file
	writeJSON(w, http.StatusOK, file)
}

func (b *FakeBackend) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := b.files[id]; !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	delete(b.files, id)
	delete(b.bodies, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) handleViewURL(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ViewURLCalls++

	if b.FailViewURL {
		writeError(w, http.StatusInternalServerError, "signer unavailable")
		return
	}

	id := r.PathValue("id")
	file, ok := b.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	resp := struct {
		URL      *string `json:"url"`
		MimeType string  `json:"mimeType"`
	}{MimeType: file.MimeType}

	if !b.LocalOnlyFiles[id] {
		u := b.Server.URL + "/signed/" + id + "?signature=test-sig"
		resp.URL = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *FakeBackend) handleDownload(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.DownloadCalls++
	id := r.PathValue("id")
	content, ok := b.bodies[id]
	local := b.LocalOnlyFiles[id]
	signedURL := b.Server.URL + "/signed/" + id + "?signature=test-sig"
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	// Locally stored files stream directly; object-store files
	// redirect to the signed URL like the real backend.
	if local {
		w.Write(content)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusFound)
}

func (b *FakeBackend) handleSigned(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("signature") == "" {
		writeError(w, http.StatusForbidden, "signature required")
		return
	}

	b.mu.Lock()
	content, ok := b.bodies[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	w.Write(content)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
