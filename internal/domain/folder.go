package domain

import "time"

// RootFolderID is the sentinel for the document root.
// The backend represents it as a null parent/folder id; the client uses
// the empty string so ids stay comparable map keys.
const RootFolderID = ""

// RootFolderName is the display name of the synthetic root crumb.
const RootFolderName = "Home"

// FolderRecord is a folder exactly as the backend lists it: flat,
// linked to its parent by id only.
type FolderRecord struct {
	// ID is an opaque backend identifier, unique across all folders
	ID string `json:"id"`

	// Name is the display name, unique among siblings on the backend
	Name string `json:"name"`

	// ParentID is empty for root-level folders
	ParentID string `json:"parentId"`

	// Path is the server-computed display path (e.g. "/irrigation/projects")
	Path string `json:"path"`

	// Order is the sort key among siblings, 0 when unset
	Order int `json:"order"`

	// ChildrenCount is the number of direct children as reported by the backend
	ChildrenCount int `json:"childrenCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot returns true if the folder sits at the root level.
func (f FolderRecord) IsRoot() bool {
	return f.ParentID == RootFolderID
}

// FolderNode is a folder with its resolved children, derived from a flat
// listing by the tree builder. Nodes are rebuilt from scratch on every
// listing fetch and never mutated afterwards.
type FolderNode struct {
	FolderRecord

	// Children are ordered by (Order ascending, input order)
	Children []*FolderNode
}

// Crumb is one entry of an ancestry chain, root first.
// The chain always starts with the synthetic Home crumb (empty ID).
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// HomeCrumb returns the synthetic root entry every ancestry chain starts with.
func HomeCrumb() Crumb {
	return Crumb{ID: RootFolderID, Name: RootFolderName, Path: ""}
}

// DeleteStats reports what a recursive folder delete removed.
type DeleteStats struct {
	FoldersDeleted int `json:"foldersDeleted"`
	FilesDeleted   int `json:"filesDeleted"`
}
