package history

import "time"

// Entry records the outcome of one file upload.
type Entry struct {
	ID        int64
	FileName  string
	FileType  int
	CompanyID string
	Size      int64
	Success   bool
	Error     string // failure reason, empty on success
	Response  string // raw server reply, JSON when the server sent JSON
	Duration  time.Duration
	Timestamp time.Time
}

// Filter narrows ListFiltered results. Zero fields are ignored.
type Filter struct {
	FileName  string
	FileType  int
	CompanyID string
	Failed    bool
	Since     time.Time
	Limit     int
}
