package domain

import "time"

// FileRecord is a stored document as the backend lists it.
type FileRecord struct {
	// ID is an opaque backend identifier
	ID string `json:"id"`

	Name     string `json:"name"`
	MimeType string `json:"mimeType"`

	// Size in bytes
	Size int64 `json:"size"`

	// FolderID is empty when the file sits at the document root
	FolderID string `json:"folderId"`

	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DocumentListing is one folder's worth of content as returned by the
// list-documents endpoint.
type DocumentListing struct {
	// RootFolder is the designated root folder of the current project
	// scope, nil outside a project view
	RootFolder *FolderRecord `json:"rootFolder"`

	Folders []FolderRecord `json:"folders"`
	Files   []FileRecord   `json:"files"`
}

// SearchResult holds free-text search hits across folders and files.
type SearchResult struct {
	Folders []FolderRecord `json:"folders"`
	Files   []FileRecord   `json:"files"`
}

// Scope narrows listings, searches and mutations to a service or project.
// Zero value means the global document root.
type Scope struct {
	ServiceID string
	ProjectID string
}

// IsZero returns true when no scope is set.
func (s Scope) IsZero() bool {
	return s.ServiceID == "" && s.ProjectID == ""
}
