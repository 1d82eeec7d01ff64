package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/ui/msgs"
	"github.com/sadopc/bizdesk/internal/upload"
	"github.com/sadopc/bizdesk/internal/validate"
)

// progressSink forwards batch progress to the running upload's channel.
// The channel is replaced for every run and closed when the run ends.
type progressSink struct {
	ctx context.Context

	mu sync.Mutex
	ch chan tea.Msg
}

func (s *progressSink) open() chan tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = make(chan tea.Msg, 16)
	return s.ch
}

func (s *progressSink) send(msg tea.Msg) {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	case <-s.ctx.Done():
	}
}

// finish delivers the final message and closes the channel.
func (s *progressSink) finish(msg tea.Msg) {
	s.send(msg)
	s.mu.Lock()
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
	s.mu.Unlock()
}

// listen waits for the next message of a run. It yields nil once the
// channel is closed.
func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (a App) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.batch.Items()
	switch {
	case key.Matches(msg, a.keys.Up):
		a.uploadCursor = clampCursor(a.uploadCursor-1, len(items))
	case key.Matches(msg, a.keys.Down):
		a.uploadCursor = clampCursor(a.uploadCursor+1, len(items))
	case key.Matches(msg, a.keys.AddFiles):
		if a.uploading {
			return a, nil
		}
		a.pathInput.SetValue("")
		a.setMode(msgs.ModeInsert)
		cmd := a.pathInput.Focus()
		return a, cmd
	case key.Matches(msg, a.keys.CycleType):
		next := model.FileTypeDrawing
		if a.batch.FileType() == model.FileTypeDrawing {
			next = model.FileTypeContract
		}
		if err := a.batch.SetFileType(next); err != nil {
			a.deps.Board.Warn(err.Error())
		} else {
			a.uploadCursor = 0
			a.deps.Board.Info("upload type: " + next.Label())
		}
		a.banners.Sync(a.deps.Now())
	case key.Matches(msg, a.keys.Delete):
		if a.uploading {
			a.deps.Board.Warn(upload.ErrRunning.Error())
			a.banners.Sync(a.deps.Now())
			return a, nil
		}
		if a.uploadCursor < len(items) {
			a.batch.Remove(items[a.uploadCursor].File.Name)
			a.uploadCursor = clampCursor(a.uploadCursor, a.batch.Len())
		}
	case key.Matches(msg, a.keys.Start):
		return a.startUpload("")
	case key.Matches(msg, a.keys.Retry):
		if a.uploadCursor < len(items) && items[a.uploadCursor].Status == upload.StatusFailed {
			return a.startUpload(items[a.uploadCursor].File.Name)
		}
	}
	return a, nil
}

// updatePathInput edits the add-files prompt. Enter adds every matching
// path; rejected files are reported as banners.
func (a App) updatePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.pathInput.Blur()
		a.setMode(msgs.ModeNormal)
		return a, nil
	case "enter":
		a.pathInput.Blur()
		a.setMode(msgs.ModeNormal)
		a.addFiles(a.pathInput.Value())
		a.banners.Sync(a.deps.Now())
		return a, nil
	}
	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	return a, cmd
}

func (a *App) addFiles(input string) {
	var files []upload.File
	for _, pattern := range strings.Fields(input) {
		paths, err := filepath.Glob(pattern)
		if err != nil || len(paths) == 0 {
			paths = []string{pattern}
		}
		for _, p := range paths {
			f, err := upload.LocalFile(p)
			if err != nil {
				a.deps.Board.Error(err.Error())
				continue
			}
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return
	}
	before := a.batch.Len()
	for _, problem := range a.batch.Add(files...) {
		a.deps.Board.Error(problem.Error())
	}
	if added := a.batch.Len() - before; added > 0 {
		a.deps.Board.Info(fmt.Sprintf("added %d file(s)", added))
	}
}

// startUpload runs the whole batch, or only the named failed file.
func (a App) startUpload(only string) (tea.Model, tea.Cmd) {
	if a.uploading {
		return a, nil
	}
	if a.company == nil {
		a.deps.Board.Warn("select a company first")
		a.banners.Sync(a.deps.Now())
		return a, nil
	}
	if only == "" && a.batch.Len() == 0 {
		a.deps.Board.Warn(upload.ErrNoFiles.Error())
		a.banners.Sync(a.deps.Now())
		return a, nil
	}
	a.batch.SetCompany(a.company.ID)
	a.uploading = true

	batch, ctx, sink := a.batch, a.ctx, a.sink
	ch := sink.open()
	a.uploadCh = ch
	run := func() tea.Msg {
		var done msgs.UploadDoneMsg
		if only == "" {
			done.Result, done.Err = batch.Run(ctx)
		} else {
			err := batch.Retry(ctx, only)
			switch {
			case err == nil:
				done.Result.Succeeded = 1
			case notStarted(err):
				done.Err = err
			default:
				done.Result.Failed = []upload.Failure{{Name: only, Reason: err.Error()}}
			}
		}
		sink.finish(done)
		return nil
	}
	reset := a.progress.SetPercent(0)
	return a, tea.Batch(run, listen(ch), reset)
}

// notStarted reports whether a retry was refused before any transfer.
func notStarted(err error) bool {
	return errors.Is(err, upload.ErrRunning) || errors.Is(err, upload.ErrUnknown) || validate.IsValidation(err)
}

func (a App) handleUploadProgress(msg msgs.UploadProgressMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listen(a.uploadCh)}
	if pct := a.batchPercent(); pct >= 0 {
		cmds = append(cmds, a.progress.SetPercent(pct))
	}
	return a, tea.Batch(cmds...)
}

func (a App) handleUploadDone(msg msgs.UploadDoneMsg) (tea.Model, tea.Cmd) {
	a.uploading = false
	a.uploadCh = nil
	a.uploadCursor = clampCursor(a.uploadCursor, a.batch.Len())
	switch {
	case msg.Err != nil:
		a.deps.Board.Fail(msg.Err)
	case len(msg.Result.Failed) == 0:
		a.deps.Board.Success(fmt.Sprintf("uploaded %d file(s)", msg.Result.Succeeded))
	default:
		for _, f := range msg.Result.Failed {
			a.deps.Board.Error(f.Name + ": " + f.Reason)
		}
		if msg.Result.Succeeded > 0 {
			a.deps.Board.Warn(fmt.Sprintf("%d uploaded, %d failed", msg.Result.Succeeded, len(msg.Result.Failed)))
		}
	}
	a.banners.Sync(a.deps.Now())
	cmd := a.progress.SetPercent(1)
	return a, cmd
}

// batchPercent is the mean progress over the pending list, 0..1, or -1
// when the list is empty.
func (a App) batchPercent() float64 {
	items := a.batch.Items()
	if len(items) == 0 {
		return -1
	}
	total := 0
	for _, it := range items {
		switch {
		case it.Status == upload.StatusDone:
			total += 100
		case it.Progress > 0:
			total += it.Progress
		}
	}
	return float64(total) / float64(len(items)*100)
}
