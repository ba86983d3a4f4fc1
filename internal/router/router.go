package router

import (
	"path"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/obevalidator/internal/screen"
)

// Factory builds a fresh screen for a route. state is the one-shot
// navigation annotation passed along with the navigation, or "".
type Factory func(state string) screen.Screen

// NavigateMsg requests the router to show the screen for Path.
// When Replace is set the current entry is replaced instead of pushed
// onto the history.
type NavigateMsg struct {
	Path    string
	State   string
	Replace bool
}

// BackMsg requests the router to return to the previous path.
type BackMsg struct{}

// Go returns a command that navigates to p with the given annotation.
func Go(p, state string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: p, State: state}
	}
}

// Router maps paths to screens. Exactly one screen is active at a time;
// paths without a registered route resolve to the fallback.
type Router struct {
	routes   map[string]Factory
	fallback Factory
	history  []string
	active   screen.Screen
}

// New creates a Router whose unmatched paths render the screen built by fallback.
func New(fallback Factory) *Router {
	return &Router{
		routes:   make(map[string]Factory),
		fallback: fallback,
	}
}

// Handle registers f for the exact path p.
func (r *Router) Handle(p string, f Factory) {
	r.routes[Clean(p)] = f
}

// Match reports the factory for p and whether a registered route matched.
// An unmatched path returns the fallback factory.
func (r *Router) Match(p string) (Factory, bool) {
	if f, ok := r.routes[Clean(p)]; ok {
		return f, true
	}
	return r.fallback, false
}

// Navigate builds a fresh screen for p, makes it active and calls its Init().
func (r *Router) Navigate(p, state string) tea.Cmd {
	p = Clean(p)
	r.history = append(r.history, p)
	return r.show(p, state)
}

// Replace is Navigate without growing the history.
func (r *Router) Replace(p, state string) tea.Cmd {
	p = Clean(p)
	if len(r.history) == 0 {
		r.history = append(r.history, p)
	} else {
		r.history[len(r.history)-1] = p
	}
	return r.show(p, state)
}

// Back returns to the previous path. No-op if there is no previous entry.
// The previous screen is rebuilt without an annotation, so one-shot
// signals are never replayed.
func (r *Router) Back() tea.Cmd {
	if len(r.history) <= 1 {
		return nil
	}
	r.history = r.history[:len(r.history)-1]
	return r.show(r.history[len(r.history)-1], "")
}

func (r *Router) show(p, state string) tea.Cmd {
	f, _ := r.Match(p)
	if f == nil {
		r.active = nil
		return nil
	}
	r.active = f(state)
	if r.active == nil {
		return nil
	}
	return r.active.Init()
}

// Active returns the screen currently shown.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Path returns the current path, or "" before the first navigation.
func (r *Router) Path() string {
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

// Depth returns the number of entries in the navigation history.
func (r *Router) Depth() int {
	return len(r.history)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NavigateMsg:
		if msg.Replace {
			return r.Replace(msg.Path, msg.State)
		}
		return r.Navigate(msg.Path, msg.State)
	case BackMsg:
		return r.Back()
	}

	if r.active == nil {
		return nil
	}

	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}

// Clean normalizes a user supplied path: it always starts with "/", has no
// trailing slash, and drops any query or fragment.
func Clean(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
