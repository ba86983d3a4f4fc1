package landing

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/obevalidator/internal/notify"
	"github.com/abhisek/obevalidator/internal/router"
	"github.com/abhisek/obevalidator/internal/screen"
	"github.com/abhisek/obevalidator/internal/ui/components"
	"github.com/abhisek/obevalidator/internal/ui/layout"
	"github.com/abhisek/obevalidator/internal/ui/theme"
)

// StateLogin is the navigation annotation that greets a freshly logged in user.
const StateLogin = "login"

// ToastTTL is how long notifications raised on this screen stay visible.
const ToastTTL = 2 * time.Second

const (
	msgLoggedIn = "Logged in successfully"
	ctaLabel    = "Try OBE Validator Now"
	tagline     = "and Ensure OBE Alignment with AI!"
)

// LandingScreen is the entry screen with a single call to action.
type LandingScreen struct {
	toasts *notify.Queue
	state  string
	cta    components.Button
}

var _ screen.Screen = (*LandingScreen)(nil)

// New creates a LandingScreen. state is the one-shot navigation annotation.
func New(toasts *notify.Queue, state string) *LandingScreen {
	cta := components.NewButton(ctaLabel, func() tea.Cmd {
		return router.Go("/validator", "")
	})
	cta.Focused = true

	return &LandingScreen{
		toasts: toasts,
		state:  state,
		cta:    cta,
	}
}

func (l *LandingScreen) Init() tea.Cmd {
	if l.state != StateLogin || l.toasts == nil {
		return nil
	}
	l.state = ""
	return l.toasts.Success(msgLoggedIn, ToastTTL)
}

func (l *LandingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	l.cta, cmd = l.cta.Update(msg)
	return l, cmd
}

func (l *LandingScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)

	headline := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	sections := []string{
		RenderBanner(compact),
		"",
		headline.Render("Analyze,"),
		headline.Render("Validate,"),
		theme.Body.Render(tagline),
		"",
		l.cta.View(),
	}
	if !compact {
		sections = append(sections, "", theme.Hint.Render("press enter to start"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.TrimRight(content, "\n"))
}

func (l *LandingScreen) Title() string {
	return "Home"
}

func (l *LandingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+L", Description: "Go to"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
