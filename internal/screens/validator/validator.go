package validator

import (
	"context"
	"errors"
	"image"
	"time"

	"charm.land/bubbles/v2/filepicker"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/obevalidator/internal/client"
	"github.com/abhisek/obevalidator/internal/notify"
	"github.com/abhisek/obevalidator/internal/router"
	"github.com/abhisek/obevalidator/internal/screen"
	"github.com/abhisek/obevalidator/internal/ui/components"
	"github.com/abhisek/obevalidator/internal/ui/imageview"
	"github.com/abhisek/obevalidator/internal/ui/layout"
	"github.com/abhisek/obevalidator/internal/ui/theme"
	"github.com/abhisek/obevalidator/internal/validation"
)

// ToastTTL is how long notifications raised on this screen stay visible.
const ToastTTL = 3 * time.Second

const (
	pickerHeight = 12
	pickerMargin = 5
)

type field int

const (
	fieldSyllabus field = iota
	fieldQuestions
	fieldThreshold
	fieldSubmit
	fieldCount
)

// Deps are the collaborators of the workflow screen.
type Deps struct {
	Client    client.Validator
	Toasts    *notify.Queue
	Log       *zap.Logger
	StartDir  string
	Threshold float64
}

// ValidatorScreen drives one upload, submit and render cycle.
type ValidatorScreen struct {
	client   client.Validator
	toasts   *notify.Queue
	log      *zap.Logger
	startDir string

	wf        *validation.Workflow
	focus     field
	threshold components.DecimalInput

	picker   filepicker.Model
	picking  bool
	pickSlot validation.Slot

	spinner   spinner.Model
	requestID string

	table     table.Model
	matrix    image.Image
	matrixErr error
}

var _ screen.Screen = (*ValidatorScreen)(nil)
var _ screen.KeyHintProvider = (*ValidatorScreen)(nil)
var _ screen.EscapeCapturer = (*ValidatorScreen)(nil)

// New creates a ValidatorScreen in the Idle phase.
func New(deps Deps) *ValidatorScreen {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	toasts := deps.Toasts
	if toasts == nil {
		toasts = notify.NewQueue()
	}
	startDir := deps.StartDir
	if startDir == "" {
		startDir = "."
	}

	return &ValidatorScreen{
		client:    deps.Client,
		toasts:    toasts,
		log:       log,
		startDir:  startDir,
		wf:        validation.NewWorkflow(deps.Threshold),
		threshold: components.NewDecimalInput(client.FormatThreshold(deps.Threshold), 12),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *ValidatorScreen) Init() tea.Cmd {
	return nil
}

func (s *ValidatorScreen) Title() string {
	return "Validator"
}

// Phase returns the request lifecycle phase.
func (s *ValidatorScreen) Phase() validation.Phase {
	return s.wf.Phase()
}

// CapturesEscape keeps Esc inside the screen while the file browser is open.
func (s *ValidatorScreen) CapturesEscape() bool {
	return s.picking
}

func (s *ValidatorScreen) KeyHints() []layout.KeyHint {
	if s.picking {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Browse"},
			{Key: "Enter", Description: "Open/Select"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	switch s.wf.Phase().View() {
	case validation.ViewLoading:
		return []layout.KeyHint{
			{Key: "Ctrl+C", Description: "Quit"},
		}
	case validation.ViewResults:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Enter", Description: "Return Home"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ValidatorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case validationDoneMsg:
		return s, s.handleDone(msg)

	case spinner.TickMsg:
		if s.wf.Phase() != validation.InFlight {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	if s.picking {
		return s, s.updatePicker(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch s.wf.Phase().View() {
	case validation.ViewForm:
		return s, s.handleFormKey(kmsg)
	case validation.ViewResults:
		return s, s.handleResultsKey(kmsg)
	}
	return s, nil
}

func (s *ValidatorScreen) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return s.setFocus((s.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "enter":
		switch s.focus {
		case fieldSyllabus:
			return s.openPicker(validation.SlotSyllabus)
		case fieldQuestions:
			return s.openPicker(validation.SlotQuestions)
		default:
			return s.submit()
		}
	}

	if s.focus == fieldThreshold {
		var cmd tea.Cmd
		s.threshold, cmd = s.threshold.Update(msg)
		return cmd
	}
	return nil
}

func (s *ValidatorScreen) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return s.reset()
	}
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

func (s *ValidatorScreen) setFocus(f field) tea.Cmd {
	s.focus = f
	if f == fieldThreshold {
		return s.threshold.Focus()
	}
	s.threshold.Blur()
	return nil
}

func (s *ValidatorScreen) openPicker(slot validation.Slot) tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = []string{validation.FileSuffix}
	fp.CurrentDirectory = s.startDir
	// The picker sizes itself from window messages, leaving a bottom margin.
	fp, _ = fp.Update(tea.WindowSizeMsg{Width: 80, Height: pickerHeight + pickerMargin})

	s.picker = fp
	s.picking = true
	s.pickSlot = slot
	return s.picker.Init()
}

func (s *ValidatorScreen) updatePicker(msg tea.Msg) tea.Cmd {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		s.picking = false
		return nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)

	if ok, path := s.picker.DidSelectFile(msg); ok {
		s.picking = false
		return tea.Batch(cmd, s.selectPath(s.pickSlot, path))
	}
	if ok, _ := s.picker.DidSelectDisabledFile(msg); ok {
		return tea.Batch(cmd, s.notifyErr(validation.ErrInvalidFileType))
	}
	return cmd
}

// selectPath reads the file at path into slot. On success focus moves to
// the next field.
func (s *ValidatorScreen) selectPath(slot validation.Slot, path string) tea.Cmd {
	f, err := validation.ReadFile(path)
	if errors.Is(err, validation.ErrInvalidFileType) {
		return s.notifyErr(err)
	}
	if err != nil {
		s.log.Warn("reading selected file", zap.String("path", path), zap.Error(err))
		return s.toasts.Error(validation.MsgUnreadableFile, ToastTTL)
	}

	if err := s.wf.SelectFile(slot, f); err != nil {
		if errors.Is(err, validation.ErrBusy) {
			return nil
		}
		return s.notifyErr(err)
	}

	if slot == validation.SlotSyllabus {
		return s.setFocus(fieldQuestions)
	}
	return s.setFocus(fieldThreshold)
}

// submit sends the selection. While a request is in flight it does nothing.
func (s *ValidatorScreen) submit() tea.Cmd {
	if s.wf.Phase() == validation.InFlight {
		return nil
	}
	if !s.wf.Selection().Complete() {
		return s.notifyErr(validation.ErrMissingInput)
	}
	if err := s.wf.ParseThreshold(s.threshold.Value()); err != nil {
		return s.notifyErr(err)
	}

	req, err := s.wf.Begin()
	if errors.Is(err, validation.ErrBusy) {
		return nil
	}
	if err != nil {
		return s.notifyErr(err)
	}

	s.threshold.Blur()
	s.requestID = uuid.NewString()
	return tea.Batch(s.spinner.Tick, s.send(s.requestID, req))
}

func (s *ValidatorScreen) send(id string, req client.Request) tea.Cmd {
	v := s.client
	return func() tea.Msg {
		if v == nil {
			return validationDoneMsg{RequestID: id, Err: errors.New("no validator configured")}
		}
		ctx := client.WithRequestID(context.Background(), id)
		res, err := v.Validate(ctx, req)
		return validationDoneMsg{RequestID: id, Result: res, Err: err}
	}
}

func (s *ValidatorScreen) handleDone(msg validationDoneMsg) tea.Cmd {
	if s.wf.Phase() != validation.InFlight || msg.RequestID != s.requestID {
		return nil
	}

	if msg.Err != nil {
		_ = s.wf.Fail(msg.Err)
		s.log.Debug("validation request failed",
			zap.String("request_id", msg.RequestID),
			zap.Error(msg.Err),
		)
		s.focus = fieldSubmit
		return s.toasts.Error(validation.MsgFailure, ToastTTL)
	}

	_ = s.wf.Complete(msg.Result)
	res := s.wf.Result()
	s.table = newResultsTable(res.Results)
	s.matrix, s.matrixErr = nil, nil
	if res.HasImage() {
		s.matrix, s.matrixErr = decodeMatrix(res)
		if s.matrixErr != nil {
			s.log.Warn("decoding confusion matrix", zap.Error(s.matrixErr))
		}
	}
	return s.toasts.Success(validation.MsgSuccess, ToastTTL)
}

func decodeMatrix(res *client.Result) (image.Image, error) {
	raw, err := res.DecodeImage()
	if err != nil {
		return nil, err
	}
	return imageview.DecodePNG(raw)
}

// reset leaves the workflow for the landing route. The screen and its
// selections are dropped by the router.
func (s *ValidatorScreen) reset() tea.Cmd {
	return router.Go("/", "")
}

func (s *ValidatorScreen) notifyErr(err error) tea.Cmd {
	return s.toasts.Error(validation.Message(err), ToastTTL)
}
