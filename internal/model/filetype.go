package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// FileType is the integer code the backend uses to classify uploads.
type FileType int

const (
	FileTypeContract FileType = 1
	FileTypeDrawing  FileType = 2
)

var fileTypeExtensions = map[FileType][]string{
	FileTypeContract: {".pdf"},
	FileTypeDrawing:  {".jpg", ".jpeg", ".png", ".gif", ".webp"},
}

// FileTypes lists the known codes in display order.
func FileTypes() []FileType {
	return []FileType{FileTypeContract, FileTypeDrawing}
}

// ParseFileType accepts the numeric code or a label ("contract", "drawing").
func ParseFileType(s string) (FileType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "contract", "合同":
		return FileTypeContract, nil
	case "drawing", "图纸":
		return FileTypeDrawing, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown file type %q", s)
	}
	t := FileType(n)
	if _, ok := fileTypeExtensions[t]; !ok {
		return 0, fmt.Errorf("unknown file type %d", n)
	}
	return t, nil
}

// Code returns the form value sent to the backend.
func (t FileType) Code() string {
	return strconv.Itoa(int(t))
}

// Label returns a human readable name.
func (t FileType) Label() string {
	switch t {
	case FileTypeContract:
		return "contract"
	case FileTypeDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}

func (t FileType) String() string { return t.Label() }

// Extensions returns the accepted lower-case extensions, dot included.
func (t FileType) Extensions() []string {
	return fileTypeExtensions[t]
}

// Accept renders the extensions the way a file picker expects them.
func (t FileType) Accept() string {
	return strings.Join(t.Extensions(), ",")
}

// Accepts reports whether name has an extension allowed for t.
func (t FileType) Accepts(name string) bool {
	ext := Ext(name)
	for _, e := range fileTypeExtensions[t] {
		if e == ext {
			return true
		}
	}
	return false
}

// Ext returns the lower-cased extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}
