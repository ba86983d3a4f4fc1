package notfound

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/obevalidator/internal/router"
	"github.com/abhisek/obevalidator/internal/screen"
	"github.com/abhisek/obevalidator/internal/ui/layout"
	"github.com/abhisek/obevalidator/internal/ui/theme"
)

// NotFoundScreen is rendered for any path without a route.
type NotFoundScreen struct {
	path string
}

var _ screen.Screen = (*NotFoundScreen)(nil)

// New creates a NotFoundScreen for the unmatched path.
func New(path string) *NotFoundScreen {
	return &NotFoundScreen{path: path}
}

func (n *NotFoundScreen) Init() tea.Cmd {
	return nil
}

func (n *NotFoundScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return n, router.Go("/", "")
	}
	return n, nil
}

func (n *NotFoundScreen) View(width, height int) string {
	code := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true).
		Render("╌╌ 404 ╌╌")

	body := theme.Body.Render("Page not found")
	if n.path != "" {
		body += "\n" + theme.Hint.Render(n.path)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		code, "", body, "", theme.Hint.Render("press enter to go home"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (n *NotFoundScreen) Title() string {
	return "Not Found"
}

func (n *NotFoundScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
