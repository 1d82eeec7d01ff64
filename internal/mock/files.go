package mock

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
)

// AddFile stores content as an uploaded file and returns its listing.
func (s *Server) AddFile(name string, t model.FileType, companyID string, content []byte) model.FileItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFileLocked(name, t, companyID, content, s.now())
}

func (s *Server) addFileLocked(name string, t model.FileType, companyID string, content []byte, at time.Time) model.FileItem {
	id := uuid.NewString()
	mimeType := mime.TypeByExtension(model.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	item := model.FileItem{
		ID:           model.FlexString(id),
		CompanyID:    companyID,
		OriginalName: name,
		FileType:     model.FlexString(t.Code()),
		Size:         model.FlexString(humanize.Bytes(uint64(len(content)))),
		UploadTime:   model.Timestamp{Time: at},
		URL:          "/api/files/" + id + "/download",
		MimeType:     mimeType,
		HasContent:   len(content) > 0,
	}
	s.files = append(s.files, storedFile{item: item, content: content})
	return item
}

// Files returns a copy of the stored file listings.
func (s *Server) Files() []model.FileItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FileItem, len(s.files))
	for i, f := range s.files {
		out[i] = f.item
	}
	return out
}

func (s *Server) findFile(id string) (storedFile, bool) {
	for _, f := range s.files {
		if string(f.item.ID) == id {
			return f, true
		}
	}
	return storedFile{}, false
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(r, "page", 1)
	size := intParam(r, "pageSize", 10)
	typ := q.Get("type")
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	companyID := q.Get("companyId")

	s.mu.Lock()
	var matched []model.FileItem
	// newest first
	for i := len(s.files) - 1; i >= 0; i-- {
		it := s.files[i].item
		if typ != "" && string(it.FileType) != typ {
			continue
		}
		if companyID != "" && it.CompanyID != companyID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.OriginalName), search) {
			continue
		}
		matched = append(matched, it)
	}
	s.mu.Unlock()

	p := listview.Paginate(matched, page, size)
	items := p.Items
	if items == nil {
		items = []model.FileItem{}
	}
	writeData(w, http.StatusOK, "", model.FilePage{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	})
}

func (s *Server) handleFileStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var st model.FileStats
	for _, f := range s.files {
		st.Total++
		switch f.item.Type() {
		case model.FileTypeContract:
			st.Contracts++
		case model.FileTypeDrawing:
			st.Drawings++
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, "", st)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	found := false
	for i, f := range s.files {
		if string(f.item.ID) == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeData(w, http.StatusOK, "file deleted", nil)
}

func (s *Server) handleFilePreview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f, ok := s.findFile(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeData(w, http.StatusOK, "", model.FilePreview{
		FileID:    string(f.item.ID),
		FilePath:  "uploads/" + string(f.item.ID) + model.Ext(f.item.OriginalName),
		FileName:  f.item.OriginalName,
		FileSize:  int64(len(f.content)),
		MimeType:  f.item.MimeType,
		CompanyID: f.item.CompanyID,
	})
}

func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, "inline")
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, "attachment")
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, disposition string) {
	s.mu.Lock()
	f, ok := s.findFile(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Type", f.item.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.item.OriginalName}))
	w.WriteHeader(http.StatusOK)
	w.Write(f.content)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file in request")
		return
	}
	defer file.Close()

	t, err := model.ParseFileType(r.FormValue("fileType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file type")
		return
	}
	name := r.FormValue("fileName")
	if name == "" {
		name = header.Filename
	}
	if !t.Accepts(name) {
		writeError(w, http.StatusBadRequest, "unsupported file format: "+model.Ext(name))
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	at := s.now()
	if ts, err := time.Parse(time.RFC3339Nano, r.FormValue("uploadTime")); err == nil {
		at = ts
	}

	s.mu.Lock()
	item := s.addFileLocked(name, t, r.FormValue("companyId"), content, at)
	s.mu.Unlock()

	writeData(w, http.StatusOK, "upload succeeded", item)
}
