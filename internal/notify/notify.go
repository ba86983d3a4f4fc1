// Package notify holds transient toast notifications. A Queue is owned by
// the app shell and handed to the screens that raise notifications.
package notify

import (
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/obevalidator/internal/ui/theme"
)

// Kind classifies a toast.
type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// MaxVisible caps how many toasts are drawn at once.
const MaxVisible = 3

// Toast is a single notification.
type Toast struct {
	ID   string
	Kind Kind
	Text string
	TTL  time.Duration
}

// DismissMsg is emitted when a toast's TTL elapses.
type DismissMsg struct {
	ID string
}

// Queue holds active toasts, newest first.
type Queue struct {
	toasts []Toast
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds a toast and returns the command that dismisses it after ttl.
func (q *Queue) Push(kind Kind, text string, ttl time.Duration) tea.Cmd {
	t := Toast{
		ID:   uuid.NewString(),
		Kind: kind,
		Text: text,
		TTL:  ttl,
	}
	q.toasts = append([]Toast{t}, q.toasts...)

	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return DismissMsg{ID: t.ID}
	})
}

// Success pushes a success toast.
func (q *Queue) Success(text string, ttl time.Duration) tea.Cmd {
	return q.Push(Success, text, ttl)
}

// Error pushes an error toast.
func (q *Queue) Error(text string, ttl time.Duration) tea.Cmd {
	return q.Push(Error, text, ttl)
}

// Dismiss removes the toast with the given ID. It reports whether a toast
// was removed.
func (q *Queue) Dismiss(id string) bool {
	i := slices.IndexFunc(q.toasts, func(t Toast) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	q.toasts = slices.Delete(q.toasts, i, i+1)
	return true
}

// Update consumes DismissMsg. It reports whether msg was handled.
func (q *Queue) Update(msg tea.Msg) bool {
	d, ok := msg.(DismissMsg)
	if !ok {
		return false
	}
	q.Dismiss(d.ID)
	return true
}

// Toasts returns a copy of the active toasts, newest first.
func (q *Queue) Toasts() []Toast {
	return slices.Clone(q.toasts)
}

// Len returns the number of active toasts.
func (q *Queue) Len() int {
	return len(q.toasts)
}

// Count returns the number of active toasts of the given kind.
func (q *Queue) Count(kind Kind) int {
	n := 0
	for _, t := range q.toasts {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// View renders the visible toasts right-aligned to width, one per line.
func (q *Queue) View(width int) string {
	if len(q.toasts) == 0 {
		return ""
	}

	visible := q.toasts
	if len(visible) > MaxVisible {
		visible = visible[:MaxVisible]
	}

	lines := make([]string, 0, len(visible))
	for _, t := range visible {
		style := theme.ToastSuccess
		icon := "✓ "
		if t.Kind == Error {
			style = theme.ToastError
			icon = "✗ "
		}
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, style.Render(icon+t.Text)))
	}
	return strings.Join(lines, "\n")
}
