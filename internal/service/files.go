package service

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/model"
)

// FilePageSize is the server-side page size of the file list.
const FilePageSize = 10

// FileQuery filters GET /files. Zero fields are left out of the query.
type FileQuery struct {
	Page      int
	PageSize  int
	Type      model.FileType
	Search    string
	CompanyID string
}

// Params renders q as query parameters.
func (q FileQuery) Params() api.Params {
	page := max(q.Page, 1)
	size := q.PageSize
	if size <= 0 {
		size = FilePageSize
	}
	var typ any
	if q.Type != 0 {
		typ = q.Type.Code()
	}
	return api.P(
		"page", page,
		"pageSize", size,
		"type", typ,
		"search", optional(q.Search),
		"companyId", optional(q.CompanyID),
	)
}

// Files calls the /files endpoints. Uploads go through internal/upload.
type Files struct {
	c *api.Client
}

// List fetches one server-side page of files.
func (s *Files) List(ctx context.Context, q FileQuery) (model.FilePage, error) {
	return get[model.FilePage](ctx, s.c, "list files", "/files", q.Params())
}

// Stats fetches the per-type file counts.
func (s *Files) Stats(ctx context.Context) (model.FileStats, error) {
	return get[model.FileStats](ctx, s.c, "file stats", "/files/stats", nil)
}

// Delete removes a file.
func (s *Files) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, "delete file", path("/files", id))
}

// Preview fetches the stored-file metadata used before showing content.
func (s *Files) Preview(ctx context.Context, id, companyID string) (model.FilePreview, error) {
	return get[model.FilePreview](ctx, s.c, "preview file", path("/files", id)+"/preview", api.P("companyId", optional(companyID)))
}

// Content fetches the raw file bytes for inline display.
func (s *Files) Content(ctx context.Context, id, companyID string) ([]byte, error) {
	var data []byte
	err := s.c.Get(ctx, path("/files", id)+"/content", api.P("companyId", optional(companyID)), &data,
		api.WithResponseType(api.ResponseBinary))
	if err != nil {
		return nil, errors.Wrap(err, "file content")
	}
	return data, nil
}

// Download fetches the file as an attachment and returns its bytes and the
// server-suggested file name, if any. The name is reduced to its last path
// element so it is always safe to create in the current directory.
func (s *Files) Download(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := s.c.Do(ctx, &api.Request{
		Endpoint:     path("/files", id) + "/download",
		ResponseType: api.ResponseBinary,
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "download file")
	}
	name := ""
	if _, params, perr := mime.ParseMediaType(resp.Headers.Get("Content-Disposition")); perr == nil {
		name = SafeFileName(params["filename"])
	}
	return resp.Raw, name, nil
}

// SafeFileName strips any directory part from a server supplied name. It
// returns "" when nothing usable is left.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case ".", "..", "/", "":
		return ""
	}
	return name
}

// DownloadURL returns the direct download address of a file.
func (s *Files) DownloadURL(id string) string {
	return s.c.URL(path("/files", id)+"/download", nil)
}
