package validator

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/table"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/obevalidator/internal/client"
	"github.com/abhisek/obevalidator/internal/ui/components"
	"github.com/abhisek/obevalidator/internal/ui/imageview"
	"github.com/abhisek/obevalidator/internal/ui/theme"
	"github.com/abhisek/obevalidator/internal/validation"
)

const (
	labelSyllabus  = "Select Syllabus File"
	labelQuestions = "Select Question File"
	labelSubmit    = "Validate OBE"
	labelHome      = "Return Home"

	similarityWidth = 10
	coherentWidth   = 8
)

func (s *ValidatorScreen) View(width, height int) string {
	if s.picking {
		return s.renderPicker(width, height)
	}
	switch s.wf.Phase().View() {
	case validation.ViewLoading:
		return s.renderLoading(width, height)
	case validation.ViewResults:
		return s.renderResults(width, height)
	}
	return s.renderForm(width, height)
}

func (s *ValidatorScreen) renderForm(width, height int) string {
	fileButton := func(slot validation.Slot, label string, f field) string {
		if sel := s.wf.File(slot); sel != nil {
			label = sel.Name
		}
		b := components.NewButton(label, nil)
		b.Focused = s.focus == f
		return b.View()
	}

	thresholdLabel := theme.Unselected.Render("Alignment Threshold")
	if s.focus == fieldThreshold {
		thresholdLabel = theme.Selected.Render("▸ Alignment Threshold")
	}

	submit := components.NewButton(labelSubmit, nil)
	submit.Focused = s.focus == fieldSubmit

	sections := []string{
		lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Upload Syllabus & Questions"),
		theme.Hint.Render("Supported format: " + validation.FileSuffix),
		"",
		fileButton(validation.SlotSyllabus, labelSyllabus, fieldSyllabus),
		fileButton(validation.SlotQuestions, labelQuestions, fieldQuestions),
		"",
		thresholdLabel,
		s.threshold.View(),
		"",
		submit.View(),
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ValidatorScreen) renderPicker(width, height int) string {
	title := fmt.Sprintf("Choose %s file (%s)", s.pickSlot, validation.FileSuffix)
	box := theme.Card.Render(
		theme.Selected.Render(title) + "\n" +
			theme.Hint.Render(s.picker.CurrentDirectory) + "\n\n" +
			s.picker.View(),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (s *ValidatorScreen) renderLoading(width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Validating..."),
		"",
		s.spinner.View(),
		"",
		theme.Hint.Render("Please wait, this might take a few moments."),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ValidatorScreen) renderResults(width, height int) string {
	res := s.wf.Result()
	cw := width - 4

	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Validation Results")
	metrics := renderMetrics(res, cw)
	home := components.NewButton(labelHome, nil)
	home.Focused = true
	footer := home.View()

	// heading + blank, metrics, blank, button
	fixed := 2 + lipgloss.Height(metrics) + 1 + lipgloss.Height(footer)
	avail := max(height-fixed, 3)

	tableRows := len(res.Results) + 3
	matrixRows := 0
	if res.HasImage() {
		tableRows = min(tableRows, max(avail/2, 3))
		matrixRows = avail - tableRows - 1
	} else {
		tableRows = min(tableRows, avail)
	}

	t := s.table
	t.SetColumns(resultColumns(cw))
	t.SetWidth(cw)
	t.SetHeight(tableRows)

	sections := []string{heading, "", t.View(), metrics}
	if res.HasImage() {
		sections = append(sections, "", s.renderMatrix(cw, matrixRows))
	}
	sections = append(sections, "", footer)

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

func (s *ValidatorScreen) renderMatrix(width, rows int) string {
	if s.matrixErr != nil || s.matrix == nil {
		return theme.Hint.Render("Confusion matrix: image unavailable")
	}
	if rows < 2 {
		return theme.Hint.Render("Confusion matrix: enlarge the terminal to view")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		theme.Subtitle.Render("Confusion Matrix"),
		imageview.Render(s.matrix, width, rows-1),
	)
}

func renderMetrics(res *client.Result, width int) string {
	metric := func(label string, v client.Value) string {
		return lipgloss.NewStyle().Bold(true).Render(label+":") + " " + v.String()
	}
	items := []string{
		metric("Accuracy", res.Accuracy),
		metric("Precision", res.Precision),
		metric("Recall", res.Recall),
		metric("F1 Score", res.F1Score),
	}
	return theme.MetricsBar.
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(items, "    "))
}

func resultColumns(width int) []table.Column {
	text := max(width-similarityWidth-coherentWidth-8, 20)
	question := text / 2
	return []table.Column{
		{Title: "Question", Width: question},
		{Title: "Best Match", Width: text - question},
		{Title: "Similarity", Width: similarityWidth},
		{Title: "Coherent", Width: coherentWidth},
	}
}

func newResultsTable(results []client.QuestionResult) table.Model {
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		coherent := theme.Incoherent.Render(r.Coherent)
		if r.IsCoherent() {
			coherent = theme.Coherent.Render(r.Coherent)
		}
		rows = append(rows, table.Row{
			r.Question,
			r.BestMatch,
			r.SimilarityScore.String(),
			coherent,
		})
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Secondary).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.Text).
		Background(theme.BgCard).
		Bold(false)

	return table.New(
		table.WithColumns(resultColumns(80)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
}
