package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// UploadRequest describes one file upload.
type UploadRequest struct {
	Name     string
	MimeType string
	// Size in bytes, used for progress math
	Size int64
	// Body is the file content; consumed exactly once
	Body io.Reader
	// FolderID is empty for the scope root
	FolderID string
	Scope    domain.Scope
}

// ProgressFunc receives monotonically non-decreasing 0-100 percentages
// while an upload's body streams out.
type ProgressFunc func(percent int)

// UploadFile streams one file to the backend as multipart form data.
// onProgress (optional) tracks the request body; it is guaranteed to
// reach 100 before UploadFile returns successfully.
func (c *Client) UploadFile(ctx context.Context, req UploadRequest, onProgress ProgressFunc) (domain.FileRecord, error) {
	if err := domain.ValidateName(req.Name); err != nil {
		return domain.FileRecord{}, err
	}

	body := req.Body
	if onProgress != nil {
		body = &progressReader{r: req.Body, total: req.Size, report: onProgress}
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(form, req, body)
		form.Close()
		pw.CloseWithError(err)
	}()

	httpReq, err := c.newRequest(ctx, "POST", "/files/upload", pr)
	if err != nil {
		pr.Close()
		return domain.FileRecord{}, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.FileRecord{}, c.mapStatus(resp)
	}

	var created domain.FileRecord
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.FileRecord{}, fmt.Errorf("%w: malformed response: %v", domain.ErrRemote, err)
	}
	if onProgress != nil {
		// Zero-byte files never tick the reader; everything else has
		// already reported 100 by now, and the callback contract is
		// non-decreasing, so this is safe either way.
		onProgress(100)
	}
	return created, nil
}

// writeUploadForm writes the scope fields and file part in the order
// the backend's multipart parser expects (fields before the stream).
func writeUploadForm(form *multipart.Writer, req UploadRequest, body io.Reader) error {
	if req.FolderID != domain.RootFolderID {
		if err := form.WriteField("folderId", req.FolderID); err != nil {
			return err
		}
	}
	if req.Scope.ServiceID != "" {
		if err := form.WriteField("serviceId", req.Scope.ServiceID); err != nil {
			return err
		}
	}
	if req.Scope.ProjectID != "" {
		if err := form.WriteField("projectId", req.Scope.ProjectID); err != nil {
			return err
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(req.Name)))
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, body)
	return err
}

func escapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// RenameFile changes a file's display name.
func (c *Client) RenameFile(ctx context.Context, id, name string) (domain.FileRecord, error) {
	if err := domain.ValidateName(name); err != nil {
		return domain.FileRecord{}, err
	}
	var updated domain.FileRecord
	payload := map[string]string{"name": name}
	if err := c.doJSON(ctx, "PATCH", "/files/"+url.PathEscape(id), payload, &updated); err != nil {
		return domain.FileRecord{}, err
	}
	return updated, nil
}

// MoveFile moves a file into another folder ("" for the root).
func (c *Client) MoveFile(ctx context.Context, id, folderID string) (domain.FileRecord, error) {
	var updated domain.FileRecord
	payload := map[string]*string{"folderId": nil}
	if folderID != domain.RootFolderID {
		payload["folderId"] = &folderID
	}
	if err := c.doJSON(ctx, "PATCH", "/files/"+url.PathEscape(id), payload, &updated); err != nil {
		return domain.FileRecord{}, err
	}
	return updated, nil
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/files/"+url.PathEscape(id), nil, nil)
}

// ViewURLResult is the view-url endpoint's answer. URL is nil when the
// file has no direct signed access (local storage) and must be fetched
// through Download instead.
type ViewURLResult struct {
	URL      *string `json:"url"`
	MimeType string  `json:"mimeType"`
}

// ViewURL asks for a short-lived signed URL for inline preview.
func (c *Client) ViewURL(ctx context.Context, fileID string) (ViewURLResult, error) {
	var result ViewURLResult
	if err := c.doJSON(ctx, "GET", "/files/"+url.PathEscape(fileID)+"/view-url", nil, &result); err != nil {
		return ViewURLResult{}, err
	}
	return result, nil
}

// Download opens the file's content stream. The backend either streams
// directly or redirects to a signed storage URL; redirects are followed
// transparently. The caller owns the returned reader.
func (c *Client) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, "GET", "/files/"+url.PathEscape(fileID)+"/download", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.mapStatus(resp)
	}
	return resp.Body, nil
}

// progressReader counts bytes read from the file body and reports
// whole percentages, never going backwards and never repeating a value.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		pct := 100
		if p.total > 0 {
			pct = int(p.read * 100 / p.total)
			if pct > 100 {
				pct = 100
			}
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
