package api

import (
	"context"
	"net/url"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// CreateFolderRequest is the payload for folder creation. An empty
// ParentID creates at the root of the given scope.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
	// Scope fields keep project folders inside their project subtree
	ServiceID string `json:"serviceId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

// UpdateFolderRequest renames and/or moves a folder. Nil fields are
// left unchanged by the backend.
type UpdateFolderRequest struct {
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
}

// ListFolders fetches the flat folder listing the tree is built from.
func (c *Client) ListFolders(ctx context.Context, scope domain.Scope) ([]domain.FolderRecord, error) {
	q := url.Values{}
	if scope.ServiceID != "" {
		q.Set("serviceId", scope.ServiceID)
	}
	if scope.ProjectID != "" {
		q.Set("projectId", scope.ProjectID)
	}
	path := "/folders"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var flat []domain.FolderRecord
	if err := c.doJSON(ctx, "GET", path, nil, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

// CreateFolder creates a folder. A sibling name clash surfaces as
// domain.ErrAlreadyExists, which the directory-upload fallback depends on.
func (c *Client) CreateFolder(ctx context.Context, req CreateFolderRequest) (domain.FolderRecord, error) {
	if err := domain.ValidateName(req.Name); err != nil {
		return domain.FolderRecord{}, err
	}

	var created domain.FolderRecord
	if err := c.doJSON(ctx, "POST", "/folders", req, &created); err != nil {
		return domain.FolderRecord{}, err
	}
	return created, nil
}

// UpdateFolder renames and/or moves a folder.
func (c *Client) UpdateFolder(ctx context.Context, id string, req UpdateFolderRequest) (domain.FolderRecord, error) {
	if req.Name != nil {
		if err := domain.ValidateName(*req.Name); err != nil {
			return domain.FolderRecord{}, err
		}
	}

	var updated domain.FolderRecord
	if err := c.doJSON(ctx, "PATCH", "/folders/"+url.PathEscape(id), req, &updated); err != nil {
		return domain.FolderRecord{}, err
	}
	return updated, nil
}

// DeleteFolder removes an empty folder.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/folders/"+url.PathEscape(id), nil, nil)
}

// DeleteFolderRecursive removes a folder with everything under it and
// reports what was deleted.
func (c *Client) DeleteFolderRecursive(ctx context.Context, id string) (domain.DeleteStats, error) {
	var stats domain.DeleteStats
	if err := c.doJSON(ctx, "DELETE", "/folders/"+url.PathEscape(id)+"/recursive", nil, &stats); err != nil {
		return domain.DeleteStats{}, err
	}
	return stats, nil
}

// EnsureProjectRoot returns the designated root folder for a project,
// creating it when the project has none yet.
func (c *Client) EnsureProjectRoot(ctx context.Context, serviceID, projectID string) (domain.FolderRecord, error) {
	payload := map[string]string{
		"serviceId": serviceID,
		"projectId": projectID,
	}
	var root domain.FolderRecord
	if err := c.doJSON(ctx, "POST", "/folders/project-root", payload, &root); err != nil {
		return domain.FolderRecord{}, err
	}
	return root, nil
}
