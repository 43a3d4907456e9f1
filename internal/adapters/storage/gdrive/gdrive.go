package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"clipforge/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Client implements ports.StorageProvider backed by Google Drive. Uploads use
// the object key as the Drive file name inside the configured folder; a
// second upload under the same key updates the existing file in place, which
// gives the overwrite-on-key-reuse semantics the orchestrator relies on for
// retried uploads. Get/Delete take the Drive fileId returned from PutObject.
type Client struct {
	srv      *drive.Service
	folderID string
}

func NewClient(srv *drive.Service, folderID string) *Client {
	return &Client{srv: srv, folderID: folderID}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	existingID, err := c.findByName(ctx, in.ObjectKey)
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive lookup failed: %w", err)
	}

	var created *drive.File
	if existingID != "" {
		call := c.srv.Files.Update(existingID, &drive.File{})
		if in.ContentType != "" {
			call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
		} else {
			call = call.Media(in.Reader)
		}
		created, err = call.Fields("id", "webContentLink").Context(ctx).Do()
	} else {
		file := &drive.File{Name: in.ObjectKey}
		if c.folderID != "" {
			file.Parents = []string{c.folderID}
		}
		call := c.srv.Files.Create(file)
		if in.ContentType != "" {
			call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
		} else {
			call = call.Media(in.Reader)
		}
		created, err = call.Fields("id", "webContentLink").Context(ctx).Do()
	}
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	url := created.WebContentLink
	if url == "" {
		url = "https://drive.google.com/uc?id=" + created.Id
	}

	return ports.PutObjectOutput{ObjectKey: created.Id, URL: url, Size: in.Size}, nil
}

func (c *Client) GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error) {
	resp, err := c.srv.Files.Get(objectKey).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, "", 0, err
	}

	contentType = resp.Header.Get("Content-Type")
	size = resp.ContentLength
	return resp.Body, contentType, size, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	return c.srv.Files.Delete(objectKey).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// findByName returns the fileId of an existing upload with this name in the
// configured folder, or "" when absent.
func (c *Client) findByName(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if c.folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", c.folderID)
	}

	list, err := c.srv.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}

var _ ports.StorageProvider = (*Client)(nil)
