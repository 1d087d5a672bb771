package api

import (
	"context"
	"net/url"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// ListOptions selects which folder's contents to fetch.
type ListOptions struct {
	// FolderID is empty for the root of the scope
	FolderID string
	Scope    domain.Scope
	// Path is the project display path ("/serviceId/projectId") used
	// by the backend to resolve the project root folder
	Path string
}

// ListDocuments fetches one folder's folders and files, plus the
// scope's designated root folder when listing a project view.
func (c *Client) ListDocuments(ctx context.Context, opts ListOptions) (domain.DocumentListing, error) {
	q := url.Values{}
	if opts.FolderID != domain.RootFolderID {
		q.Set("folderId", opts.FolderID)
	}
	if opts.Path != "" {
		q.Set("path", opts.Path)
	}
	if opts.Scope.ServiceID != "" {
		q.Set("serviceId", opts.Scope.ServiceID)
	}
	if opts.Scope.ProjectID != "" {
		q.Set("projectId", opts.Scope.ProjectID)
	}

	path := "/documents"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var listing domain.DocumentListing
	if err := c.doJSON(ctx, "GET", path, nil, &listing); err != nil {
		return domain.DocumentListing{}, err
	}
	if listing.Folders == nil {
		listing.Folders = []domain.FolderRecord{}
	}
	if listing.Files == nil {
		listing.Files = []domain.FileRecord{}
	}
	return listing, nil
}

// SearchDocuments runs a free-text search over folders and files.
func (c *Client) SearchDocuments(ctx context.Context, query string, scope domain.Scope) (domain.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if scope.ServiceID != "" {
		q.Set("serviceId", scope.ServiceID)
	}
	if scope.ProjectID != "" {
		q.Set("projectId", scope.ProjectID)
	}

	var result domain.SearchResult
	if err := c.doJSON(ctx, "GET", "/documents/search?"+q.Encode(), nil, &result); err != nil {
		return domain.SearchResult{}, err
	}
	if result.Folders == nil {
		result.Folders = []domain.FolderRecord{}
	}
	if result.Files == nil {
		result.Files = []domain.FileRecord{}
	}
	return result, nil
}
