package app

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/obevalidator/internal/client"
	"github.com/abhisek/obevalidator/internal/notify"
	"github.com/abhisek/obevalidator/internal/router"
	"github.com/abhisek/obevalidator/internal/screen"
	"github.com/abhisek/obevalidator/internal/screens/landing"
	"github.com/abhisek/obevalidator/internal/screens/notfound"
	"github.com/abhisek/obevalidator/internal/screens/validator"
	"github.com/abhisek/obevalidator/internal/ui/layout"
)

// Options configures the terminal application.
type Options struct {
	Client      client.Validator
	Log         *zap.Logger
	Target      string // shown in the header
	InitialPath string
	Threshold   float64
	StartDir    string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	toasts  *notify.Queue
	target  string
	initial string

	address    textinput.Model
	addressing bool

	width  int
	height int
}

// newAppModel creates an AppModel with the route table wired up.
func newAppModel(opts Options) AppModel {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	toasts := notify.NewQueue()

	var r *router.Router
	r = router.New(func(string) screen.Screen {
		return notfound.New(r.Path())
	})
	r.Handle("/", func(state string) screen.Screen {
		return landing.New(toasts, state)
	})
	r.Handle("/validator", func(string) screen.Screen {
		return validator.New(validator.Deps{
			Client:    opts.Client,
			Toasts:    toasts,
			Log:       log.Named("validator"),
			StartDir:  opts.StartDir,
			Threshold: opts.Threshold,
		})
	})

	address := textinput.New()
	address.Placeholder = "/validator"
	address.Prompt = ""

	initial := opts.InitialPath
	if initial == "" {
		initial = "/"
	}

	return AppModel{
		router:  r,
		toasts:  toasts,
		target:  opts.Target,
		initial: initial,
		address: address,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Navigate(m.initial, "")
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case notify.DismissMsg:
		m.toasts.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.addressing {
			return m.updateAddress(msg)
		}
		switch msg.String() {
		case "ctrl+l":
			m.addressing = true
			m.address.SetValue("")
			return m, m.address.Focus()
		case "esc":
			if c, ok := m.router.Active().(screen.EscapeCapturer); ok && c.CapturesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.BackMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p := strings.TrimSpace(m.address.Value())
		m.addressing = false
		m.address.Blur()
		if p == "" {
			return m, nil
		}
		return m, router.Go(p, "")
	case "esc":
		m.addressing = false
		m.address.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.target, m.width)

	var footer string
	if m.addressing {
		footer = layout.RenderAddressBar(m.address.View(), m.width)
	} else {
		footer = layout.RenderFooter(m.keyHints(active), m.width)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	content = overlayTop(content, m.toasts.View(m.width))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) keyHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	hints := []layout.KeyHint{{Key: "Ctrl+L", Description: "Go to"}}
	if m.router.Depth() > 1 {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// overlayTop draws overlay over the first lines of content.
func overlayTop(content, overlay string) string {
	if overlay == "" {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, o := range strings.Split(overlay, "\n") {
		if i < len(lines) {
			lines[i] = o
		} else {
			lines = append(lines, o)
		}
	}
	return strings.Join(lines, "\n")
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
