package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/obevalidator/internal/ui/theme"
)

// DecimalInput wraps bubbles/textinput and only accepts the characters of
// a decimal number.
type DecimalInput struct {
	Model textinput.Model
	valid bool
}

// NewDecimalInput creates a blurred input holding value.
func NewDecimalInput(value string, charLimit int) DecimalInput {
	ti := textinput.New()
	ti.Prompt = ""
	ti.SetValue(value)
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	d := DecimalInput{Model: ti}
	d.check()
	return d
}

// Focus focuses the input.
func (d *DecimalInput) Focus() tea.Cmd {
	return d.Model.Focus()
}

// Blur removes focus from the input.
func (d *DecimalInput) Blur() {
	d.Model.Blur()
}

// Focused reports whether the input has focus.
func (d DecimalInput) Focused() bool {
	return d.Model.Focused()
}

// Update handles messages. Printable keys other than digits, '.' and a
// leading '-' are dropped.
func (d DecimalInput) Update(msg tea.Msg) (DecimalInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.Text != "" {
		if !acceptsDecimal(kmsg.Text) {
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.check()
	return d, cmd
}

func acceptsDecimal(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func (d *DecimalInput) check() {
	_, err := d.Float()
	d.valid = err == nil
}

// View renders the input with a validity mark.
func (d DecimalInput) View() string {
	view := d.Model.View()
	if d.valid {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}

// Value returns the current input value.
func (d DecimalInput) Value() string {
	return d.Model.Value()
}

// Valid reports whether the value currently parses as a number.
func (d DecimalInput) Valid() bool {
	return d.valid
}

// Float returns the input value as a float64.
func (d DecimalInput) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(d.Model.Value()), 64)
}
