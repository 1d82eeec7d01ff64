// Package notify keeps the short-lived banners shown after an action
// succeeds or fails.
package notify

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/bizdesk/internal/service"
	"github.com/sadopc/bizdesk/internal/validate"
)

// Kind is the banner severity.
type Kind int

const (
	Success Kind = iota
	Error
	Warning
	Info
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Default lifetimes.
const (
	SuccessLifetime    = 3 * time.Second
	ErrorLifetime      = 3 * time.Second
	ValidationLifetime = 2 * time.Second
	WarningLifetime    = 5 * time.Second
	InfoLifetime       = 3 * time.Second
)

// Banner is one notification.
type Banner struct {
	ID      int
	Kind    Kind
	Text    string
	Expires time.Time
}

// Board holds the active banners. The zero value is not usable; call New.
type Board struct {
	mu      sync.Mutex
	banners []Banner
	nextID  int
	now     func() time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates an empty board.
func New(opts ...Option) *Board {
	b := &Board{now: time.Now, nextID: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Push adds a banner that lives for d. A non-positive d uses the kind's
// default lifetime.
func (b *Board) Push(kind Kind, text string, d time.Duration) Banner {
	if d <= 0 {
		d = lifetime(kind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	banner := Banner{ID: b.nextID, Kind: kind, Text: Clean(text), Expires: b.now().Add(d)}
	b.nextID++
	b.banners = append(b.banners, banner)
	return banner
}

func (b *Board) Success(text string) Banner { return b.Push(Success, text, 0) }
func (b *Board) Warn(text string) Banner    { return b.Push(Warning, text, 0) }
func (b *Board) Info(text string) Banner    { return b.Push(Info, text, 0) }
func (b *Board) Error(text string) Banner   { return b.Push(Error, text, 0) }

// Fail turns err into an error banner. Validation problems get the shorter
// lifetime.
func (b *Board) Fail(err error) Banner {
	if validate.IsValidation(err) {
		return b.Push(Error, err.Error(), ValidationLifetime)
	}
	return b.Push(Error, service.Message(err), ErrorLifetime)
}

// Active returns the banners still alive at now, oldest first, and forgets
// the expired ones.
func (b *Board) Active(now time.Time) []Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.banners[:0]
	for _, banner := range b.banners {
		if now.Before(banner.Expires) {
			kept = append(kept, banner)
		}
	}
	b.banners = kept
	return append([]Banner(nil), kept...)
}

// Current returns the banners alive right now.
func (b *Board) Current() []Banner {
	return b.Active(b.now())
}

// Dismiss removes a banner before it expires.
func (b *Board) Dismiss(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, banner := range b.banners {
		if banner.ID == id {
			b.banners = append(b.banners[:i], b.banners[i+1:]...)
			return
		}
	}
}

// Clear removes every banner.
func (b *Board) Clear() {
	b.mu.Lock()
	b.banners = nil
	b.mu.Unlock()
}

func lifetime(k Kind) time.Duration {
	switch k {
	case Success:
		return SuccessLifetime
	case Error:
		return ErrorLifetime
	case Warning:
		return WarningLifetime
	default:
		return InfoLifetime
	}
}

var emoji = regexp.MustCompile(`[\p{So}\x{FE0F}\x{200D}]`)

// Clean strips emoji and surrounding space from a message.
func Clean(text string) string {
	return strings.TrimSpace(emoji.ReplaceAllString(text, ""))
}
