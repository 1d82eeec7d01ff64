package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sadopc/bizdesk/internal/model"
)

// File is an uploadable file. Open is called once per upload attempt.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// LocalFile describes a file on disk.
func LocalFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesFile wraps in-memory content.
func BytesFile(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

type entry struct {
	name  string
	value string
	file  *File
}

// Form is an ordered multipart form. The transport does not inspect it.
type Form struct {
	entries []entry
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a text field.
func (f *Form) AddField(name, value string) *Form {
	f.entries = append(f.entries, entry{name: name, value: value})
	return f
}

// AddFile appends a file part.
func (f *Form) AddFile(fieldName string, file File) *Form {
	f.entries = append(f.entries, entry{name: fieldName, file: &file})
	return f
}

// Value returns the first text field called name.
func (f *Form) Value(name string) (string, bool) {
	for _, e := range f.entries {
		if e.file == nil && e.name == name {
			return e.value, true
		}
	}
	return "", false
}

// NewFileForm builds the standard upload form: the file part followed by
// fileType, fileName, uploadTime and companyId.
func NewFileForm(file File, t model.FileType, companyID string, now time.Time) *Form {
	return NewForm().
		AddFile("file", file).
		AddField("fileType", t.Code()).
		AddField("fileName", file.Name).
		AddField("uploadTime", now.UTC().Format("2006-01-02T15:04:05.000Z07:00")).
		AddField("companyId", companyID)
}

// FileError reports a local file that could not be read for an upload.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }

// errSizeChanged is returned when a file no longer has the size it was
// added with.
var errSizeChanged = errors.New("file changed size while uploading")

// body is an encoded form. Text parts are rendered up front; file contents
// are read while the request is sent. Len is exact before the first read.
type body struct {
	r       io.Reader
	size    int64
	closers []io.Closer
	once    sync.Once
}

func (b *body) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *body) Len() int64 { return b.size }

// Close closes every opened file. It is safe to call more than once.
func (b *body) Close() error {
	b.once.Do(func() {
		for _, c := range b.closers {
			c.Close()
		}
	})
	return nil
}

// encode lays the form out as a stream. Every file is opened here so a
// missing file fails before the request starts.
func (f *Form) encode() (*body, string, error) {
	b := &body{}
	var parts []io.Reader
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	flush := func() {
		if buf.Len() > 0 {
			chunk := bytes.Clone(buf.Bytes())
			parts = append(parts, bytes.NewReader(chunk))
			b.size += int64(len(chunk))
			buf.Reset()
		}
	}

	for _, e := range f.entries {
		if e.file == nil {
			if err := w.WriteField(e.name, e.value); err != nil {
				b.Close()
				return nil, "", fmt.Errorf("writing field %s: %w", e.name, err)
			}
			continue
		}
		file := *e.file
		if file.Open == nil {
			b.Close()
			return nil, "", &FileError{Name: file.Name, Err: errors.New("no content")}
		}
		rc, err := file.Open()
		if err != nil {
			b.Close()
			return nil, "", &FileError{Name: file.Name, Err: err}
		}
		b.closers = append(b.closers, rc)
		if _, err := w.CreateFormFile(e.name, file.Name); err != nil {
			b.Close()
			return nil, "", fmt.Errorf("creating part %s: %w", e.name, err)
		}
		flush()
		parts = append(parts, &sizedReader{name: file.Name, r: rc, left: file.Size})
		b.size += file.Size
	}
	if err := w.Close(); err != nil {
		b.Close()
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	flush()
	b.r = io.MultiReader(parts...)
	return b, w.FormDataContentType(), nil
}

// sizedReader yields exactly left bytes of r and fails when r is shorter or
// longer, so the declared content length always holds.
type sizedReader struct {
	name string
	r    io.Reader
	left int64
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if s.left <= 0 {
		var extra [1]byte
		if n, _ := s.r.Read(extra[:]); n > 0 {
			return 0, &FileError{Name: s.name, Err: errSizeChanged}
		}
		return 0, io.EOF
	}
	if int64(len(p)) > s.left {
		p = p[:s.left]
	}
	n, err := s.r.Read(p)
	s.left -= int64(n)
	switch {
	case err == io.EOF && s.left > 0:
		return n, &FileError{Name: s.name, Err: errSizeChanged}
	case err == io.EOF:
		return n, nil
	case err != nil:
		return n, &FileError{Name: s.name, Err: err}
	}
	return n, nil
}
