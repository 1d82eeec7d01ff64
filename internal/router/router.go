// Package router maps page paths to their metadata and guards the pages
// that need a selected company.
package router

import (
	"context"
	"strings"
	"sync"

	"github.com/sadopc/bizdesk/internal/core/state"
)

// Paths of the known pages.
const (
	Home            = "/"
	Upload          = "/upload"
	Files           = "/files"
	CompanyLogin    = "/company/login"
	CompanyInfo     = "/company/info"
	ContractInfo    = "/contract/contract_info"
	ContractPreview = "/contract/preview"
	About           = "/about"
	NotFound        = "*"
)

const appTitle = "File Management"

// Route describes one page.
type Route struct {
	Path         string
	Title        string
	Label        string
	RequiresAuth bool
}

// FullTitle is the window title of the page.
func (r Route) FullTitle() string {
	return r.Title + " - " + appTitle
}

var routes = []Route{
	{Path: Home, Title: "Home", Label: "Home"},
	{Path: Upload, Title: "Upload", Label: "Upload files", RequiresAuth: true},
	{Path: Files, Title: "Files", Label: "Files", RequiresAuth: true},
	{Path: CompanyLogin, Title: "Company login", Label: "Select company"},
	{Path: CompanyInfo, Title: "Company info", Label: "Companies", RequiresAuth: true},
	{Path: ContractInfo, Title: "Contracts", Label: "Contracts", RequiresAuth: true},
	{Path: ContractPreview, Title: "Contract preview", Label: "Contract preview", RequiresAuth: true},
	{Path: About, Title: "About", Label: "About"},
}

var fallback = Route{Path: NotFound, Title: "Page not found"}

// Routes returns the route table without the fallback.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Menu returns the navigation entries in display order.
func Menu() []Route {
	return Routes()
}

// Match returns the route for path, or the not-found route. Trailing slashes
// and a query string are ignored.
func Match(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	for _, r := range routes {
		if r.Path == path {
			return r
		}
	}
	return fallback
}

// Router tracks the current page and enforces the company guard.
type Router struct {
	session *state.Session

	mu      sync.Mutex
	current Route
	history []Route
}

// New creates a router on the home page. session may be nil, in which case
// every guarded page redirects to the login page.
func New(session *state.Session) *Router {
	return &Router{session: session, current: Match(Home)}
}

// Current returns the active route.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Authorized reports whether a company is selected.
func (r *Router) Authorized(ctx context.Context) (bool, error) {
	if r.session == nil {
		return false, nil
	}
	_, ok, err := r.session.SelectedCompany(ctx)
	return ok, err
}

// Resolve returns the route that path ends up on: the route itself, or the
// login page when it requires a company and none is selected.
func (r *Router) Resolve(ctx context.Context, path string) (Route, error) {
	route := Match(path)
	if !route.RequiresAuth {
		return route, nil
	}
	ok, err := r.Authorized(ctx)
	if err != nil {
		return Match(CompanyLogin), err
	}
	if !ok {
		return Match(CompanyLogin), nil
	}
	return route, nil
}

// Navigate resolves path and makes the result current.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	route, err := r.Resolve(ctx, path)
	r.mu.Lock()
	defer r.mu.Unlock()
	if route.Path != r.current.Path {
		r.history = append(r.history, r.current)
		r.current = route
	}
	return route, err
}

// Back returns to the previous page. It reports false when there is none.
func (r *Router) Back() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return r.current, false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	return r.current, true
}
