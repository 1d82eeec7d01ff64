package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/core/history"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/validate"
)

// DefaultPath is the upload endpoint relative to the API base.
const DefaultPath = "/upload"

var (
	ErrNoFiles = errors.New("no files selected")
	ErrRunning = errors.New("an upload is already in progress")
	ErrUnknown = errors.New("file is not in the upload list")
)

// Status is the state of one file in a batch.
type Status int

const (
	StatusPending Status = iota
	StatusUploading
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUploading:
		return "uploading"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item is a file in the pending list. Progress is 0..100, or -1 once the
// upload failed.
type Item struct {
	File     File
	Status   Status
	Progress int
	Reason   string
	Reply    any
}

// Failure names a file that could not be uploaded.
type Failure struct {
	Name   string
	Reason string
}

// BatchResult summarizes one Run.
type BatchResult struct {
	Succeeded int
	Failed    []Failure
}

// Recorder persists upload outcomes. *history.Store satisfies it.
type Recorder interface {
	Add(history.Entry) (int64, error)
}

// BatchConfig configures a Batch.
type BatchConfig struct {
	Path      string
	FileType  model.FileType
	CompanyID string
	Limits    validate.Limits
	Recorder  Recorder
	Logger    *zap.Logger
	// OnProgress is called with the file name and its new progress value.
	OnProgress func(name string, percent int)
	Now        func() time.Time
}

// Batch uploads a list of files strictly one after another.
type Batch struct {
	transport *Transport
	cfg       BatchConfig

	mu      sync.Mutex
	items   []*Item
	running bool
}

// NewBatch creates an empty batch.
func NewBatch(t *Transport, cfg BatchConfig) *Batch {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.FileType == 0 {
		cfg.FileType = model.FileTypeContract
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Batch{transport: t, cfg: cfg}
}

// FileType returns the type every file in the batch is uploaded as.
func (b *Batch) FileType() model.FileType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.FileType
}

// SetFileType switches the upload type and empties the pending list, since
// accepted extensions differ between types.
func (b *Batch) SetFileType(t model.FileType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrRunning
	}
	if t != b.cfg.FileType {
		b.cfg.FileType = t
		b.items = nil
	}
	return nil
}

// SetCompany sets the company the files are attached to.
func (b *Batch) SetCompany(id string) {
	b.mu.Lock()
	b.cfg.CompanyID = id
	b.mu.Unlock()
}

// Add validates files against the pending list and appends the accepted
// ones. Rejected files are reported in the returned errors.
func (b *Batch) Add(files ...File) validate.Errors {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := make([]validate.Candidate, len(b.items))
	for i, it := range b.items {
		pending[i] = validate.Candidate{Name: it.File.Name, Size: it.File.Size}
	}
	incoming := make([]validate.Candidate, len(files))
	for i, f := range files {
		incoming[i] = validate.Candidate{Name: f.Name, Size: f.Size}
	}
	accepted, problems := validate.Files(pending, incoming, b.cfg.FileType, b.cfg.Limits)
	for _, i := range accepted {
		b.items = append(b.items, &Item{File: files[i]})
	}
	return problems
}

// Remove drops a file from the pending list. It refuses while a run is in
// progress, since the run already holds its own list of files.
func (b *Batch) Remove(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	for i, it := range b.items {
		if it.File.Name == name {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the pending list.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		b.items = nil
	}
}

// Items returns a snapshot of the pending list.
func (b *Batch) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Item, len(b.items))
	for i, it := range b.items {
		out[i] = *it
	}
	return out
}

// Len returns the number of pending files.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Run uploads every pending file in order. All files are validated first;
// if any is invalid nothing is sent. Succeeded files leave the pending list,
// failed ones stay for Retry.
func (b *Batch) Run(ctx context.Context) (BatchResult, error) {
	items, err := b.begin(nil)
	if err != nil {
		return BatchResult{}, err
	}
	defer b.finish()

	var result BatchResult
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := b.uploadOne(ctx, it); err != nil {
			result.Failed = append(result.Failed, Failure{Name: it.File.Name, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	b.cfg.Logger.Info("upload batch finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// Retry re-uploads a single failed file.
func (b *Batch) Retry(ctx context.Context, name string) error {
	items, err := b.begin(&name)
	if err != nil {
		return err
	}
	defer b.finish()
	return b.uploadOne(ctx, items[0])
}

// begin marks the batch running and returns the items to upload. only, when
// set, selects a single failed file.
func (b *Batch) begin(only *string) ([]*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil, ErrRunning
	}
	var items []*Item
	for _, it := range b.items {
		if only != nil {
			if it.File.Name == *only && it.Status == StatusFailed {
				items = append(items, it)
				break
			}
			continue
		}
		if it.Status != StatusDone {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		if only != nil {
			return nil, fmt.Errorf("%s: %w", *only, ErrUnknown)
		}
		return nil, ErrNoFiles
	}
	var problems validate.Errors
	for _, it := range items {
		if err := validate.File(it.File.Name, it.File.Size, b.cfg.FileType, b.cfg.Limits.MaxBytes); err != nil {
			problems = append(problems, err.(*validate.Error))
		}
	}
	if len(problems) > 0 {
		return nil, problems
	}
	for _, it := range items {
		it.Status = StatusPending
		it.Progress = 0
		it.Reason = ""
	}
	b.running = true
	return items, nil
}

func (b *Batch) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	kept := b.items[:0]
	for _, it := range b.items {
		if it.Status != StatusDone {
			kept = append(kept, it)
		}
	}
	b.items = kept
}

func (b *Batch) uploadOne(ctx context.Context, it *Item) error {
	b.mu.Lock()
	it.Status = StatusUploading
	ft, companyID := b.cfg.FileType, b.cfg.CompanyID
	b.mu.Unlock()

	name := it.File.Name
	form := NewFileForm(it.File, ft, companyID, b.cfg.Now())
	start := time.Now()
	reply, err := b.transport.Upload(ctx, b.cfg.Path, form, func(pct int) {
		b.setProgress(it, pct)
	})

	b.mu.Lock()
	if err != nil {
		it.Status = StatusFailed
		it.Progress = -1
		it.Reason = err.Error()
	} else {
		it.Status = StatusDone
		it.Progress = 100
		it.Reply = reply
	}
	progress := it.Progress
	b.mu.Unlock()

	if b.cfg.OnProgress != nil {
		b.cfg.OnProgress(name, progress)
	}
	b.record(it.File, ft, companyID, reply, err, time.Since(start))
	if err != nil {
		b.cfg.Logger.Warn("upload failed", zap.String("file", name), zap.Error(err))
	}
	return err
}

func (b *Batch) setProgress(it *Item, pct int) {
	b.mu.Lock()
	it.Progress = pct
	name := it.File.Name
	b.mu.Unlock()
	if b.cfg.OnProgress != nil {
		b.cfg.OnProgress(name, pct)
	}
}

func (b *Batch) record(f File, ft model.FileType, companyID string, reply any, err error, d time.Duration) {
	if b.cfg.Recorder == nil {
		return
	}
	e := history.Entry{
		FileName:  f.Name,
		FileType:  int(ft),
		CompanyID: companyID,
		Size:      f.Size,
		Success:   err == nil,
		Duration:  d,
		Timestamp: b.cfg.Now(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	if reply != nil {
		if s, ok := reply.(string); ok {
			e.Response = s
		} else if data, mErr := json.Marshal(reply); mErr == nil {
			e.Response = string(data)
		}
	}
	if _, rErr := b.cfg.Recorder.Add(e); rErr != nil {
		b.cfg.Logger.Warn("recording upload history", zap.String("file", f.Name), zap.Error(rErr))
	}
}
