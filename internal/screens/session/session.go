// Package session is the live tutoring screen: transcript, chat composer,
// the inline answer form, and speaking-session recording.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/bandup/internal/audio"
	"github.com/abhisek/bandup/internal/protocol"
	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/tutor"
	"github.com/abhisek/bandup/internal/ui/components"
	"github.com/abhisek/bandup/internal/ui/layout"
)

// answerField is one row of the inline answer form.
type answerField struct {
	kind   protocol.Kind
	id     string
	input  components.TextInput // blanks
	choice components.Choice    // true/false/not given
}

// SessionScreen drives one tutoring session.
type SessionScreen struct {
	engine   *tutor.Engine
	player   *audio.Player
	recorder audio.Recorder

	// summaryFor builds the hand-off screen once the session completes.
	summaryFor func(outcome tutor.SessionResult) screen.Screen

	composer   components.TextInput
	form       []answerField
	formFocus  int
	inFlight   bool
	lastSpeech []byte
	aidPath    string
	errMsg     string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a session screen around a prepared engine.
func New(engine *tutor.Engine, player *audio.Player, recorder audio.Recorder, summaryFor func(tutor.SessionResult) screen.Screen) *SessionScreen {
	return &SessionScreen{
		engine:     engine,
		player:     player,
		recorder:   recorder,
		summaryFor: summaryFor,
		composer:   components.NewTextInput("Type your message...", 400),
	}
}

func (s *SessionScreen) Title() string {
	return "Session"
}

func (s *SessionScreen) Init() tea.Cmd {
	s.inFlight = true
	return tea.Batch(
		func() tea.Msg {
			update, err := s.engine.Start(context.Background())
			return turnMsg{Update: update, Err: err}
		},
		s.composer.Init(),
	)
}

// Close releases the session's resources when the screen leaves the stack.
func (s *SessionScreen) Close() {
	if s.player != nil {
		s.player.Stop()
	}
	if s.recorder != nil && s.recorder.Recording() {
		s.recorder.Stop()
	}
	s.engine.Close()
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.engine.Recording() {
		return []layout.KeyHint{
			{Key: "Ctrl+R", Description: "Stop & send recording"},
			{Key: "Esc", Description: "Leave session"},
		}
	}
	hints := []layout.KeyHint{}
	if len(s.form) > 0 {
		hints = append(hints,
			layout.KeyHint{Key: "Tab", Description: "Next question"},
			layout.KeyHint{Key: "Enter", Description: "Submit answers"},
		)
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Send"})
	}
	if s.canRecord() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Record answer"})
	}
	if s.lastSpeech != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Replay audio"})
	}
	hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Leave session"})
	return hints
}

func (s *SessionScreen) canRecord() bool {
	return s.recorder != nil && s.engine.Phase() == tutor.PhaseActive
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case turnMsg:
		return s.handleTurn(msg)

	case visualAidSavedMsg:
		if msg.Err == nil {
			s.aidPath = msg.Path
		}
		return s, nil

	case recordingStoppedMsg:
		return s.handleRecordingStopped(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.inFlight && len(s.form) == 0 {
		var cmd tea.Cmd
		s.composer, cmd = s.composer.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleTurn(msg turnMsg) (screen.Screen, tea.Cmd) {
	s.inFlight = false

	if msg.Err != nil {
		var gerr *tutor.GenerationError
		if errors.As(msg.Err, &gerr) && s.engine.Phase() == tutor.PhaseFailed {
			s.errMsg = "Could not start the session: " + gerr.Err.Error()
			return s, nil
		}
		var verr *tutor.ValidationError
		if errors.As(msg.Err, &verr) {
			// The submission was rejected, so the form is still up and
			// the user needs to know why.
			s.errMsg = verr.Reason
			return s, nil
		}
		// Recoverable failure: the notice turn is already in the
		// transcript, so just keep going.
		s.errMsg = ""
	}

	if msg.Update == nil {
		return s, nil
	}

	var cmds []tea.Cmd

	if msg.Update.Speech != nil {
		s.lastSpeech = msg.Update.Speech
		if s.player != nil {
			if err := s.player.Play(msg.Update.Speech); err != nil {
				s.errMsg = err.Error()
			}
		}
	}

	if msg.Update.VisualAid != nil {
		cmds = append(cmds, saveVisualAid(msg.Update.VisualAid))
	}

	if msg.Update.Completed {
		if outcome, ok := s.engine.Outcome(); ok {
			result := tutor.SessionResult{
				Outcome:     outcome,
				Corrections: s.engine.Corrections(),
			}
			cmds = append(cmds, func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: s.summaryFor(result)}
			})
			return s, tea.Batch(cmds...)
		}
	}

	s.rebuildForm()
	return s, tea.Batch(cmds...)
}

// rebuildForm mirrors the collector's pending set into input widgets.
func (s *SessionScreen) rebuildForm() {
	pending := s.engine.Collector().Pending()
	s.form = make([]answerField, 0, len(pending))
	for _, q := range pending {
		field := answerField{kind: q.Directive.Kind, id: q.Directive.ID}
		switch q.Directive.Kind {
		case protocol.KindBlank:
			field.input = components.NewTextInput(fmt.Sprintf("Answer %s", q.Directive.ID), 80)
		case protocol.KindTrueFalseNotGiven:
			field.choice = components.NewChoice(q.Directive.Statement,
				[]string{tutor.AnswerTrue, tutor.AnswerFalse, tutor.AnswerNotGiven})
			field.choice.SetFocus(false)
		}
		s.form = append(s.form, field)
	}
	s.formFocus = 0
	s.syncFormFocus()
}

func (s *SessionScreen) syncFormFocus() {
	for i := range s.form {
		focused := i == s.formFocus
		switch s.form[i].kind {
		case protocol.KindBlank:
			if focused {
				s.form[i].input.Focus()
			} else {
				s.form[i].input.Blur()
			}
		case protocol.KindTrueFalseNotGiven:
			s.form[i].choice.SetFocus(focused)
		}
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		return s.toggleRecording()
	case "ctrl+p":
		if s.lastSpeech != nil && s.player != nil {
			if err := s.player.Play(s.lastSpeech); err != nil {
				s.errMsg = err.Error()
			}
		}
		return s, nil
	}

	if s.inFlight || s.engine.Recording() {
		return s, nil
	}

	if len(s.form) > 0 {
		return s.handleFormKey(msg)
	}
	return s.handleComposerKey(msg)
}

func (s *SessionScreen) handleComposerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		text := s.composer.Value()
		s.composer.Clear()
		return s, s.sendText(text)
	}

	var cmd tea.Cmd
	s.composer, cmd = s.composer.Update(msg)
	return s, cmd
}

func (s *SessionScreen) handleFormKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		if s.form[s.formFocus].kind == protocol.KindTrueFalseNotGiven && msg.String() == "down" {
			break // down navigates options inside a choice
		}
		s.formFocus = (s.formFocus + 1) % len(s.form)
		s.syncFormFocus()
		return s, nil
	case "shift+tab":
		s.formFocus = (s.formFocus - 1 + len(s.form)) % len(s.form)
		s.syncFormFocus()
		return s, nil
	case "enter":
		if s.form[s.formFocus].kind == protocol.KindTrueFalseNotGiven && !s.form[s.formFocus].choice.Picked() {
			break // first enter picks the option
		}
		return s, s.submitAnswers()
	}

	field := &s.form[s.formFocus]
	var cmd tea.Cmd
	switch field.kind {
	case protocol.KindBlank:
		field.input, cmd = field.input.Update(msg)
	case protocol.KindTrueFalseNotGiven:
		field.choice, cmd = field.choice.Update(msg)
	}
	return s, cmd
}

// submitAnswers copies the form into the collector and sends. Validation
// failures mark the offending fields and keep the form up.
func (s *SessionScreen) submitAnswers() tea.Cmd {
	collector := s.engine.Collector()
	for i := range s.form {
		value := s.form[i].input.Value()
		if s.form[i].kind == protocol.KindTrueFalseNotGiven {
			value = s.form[i].choice.Value()
		}
		if value == "" {
			continue
		}
		if err := collector.SetAnswer(i, value); err != nil {
			s.form[i].input.Submit(false)
			s.errMsg = err.Error()
			return nil
		}
	}

	s.inFlight = true
	s.errMsg = ""
	return func() tea.Msg {
		update, err := s.engine.SendAnswers(context.Background())
		return turnMsg{Update: update, Err: err}
	}
}

func (s *SessionScreen) sendText(text string) tea.Cmd {
	s.inFlight = true
	s.errMsg = ""
	return func() tea.Msg {
		update, err := s.engine.SendText(context.Background(), text)
		return turnMsg{Update: update, Err: err}
	}
}

func (s *SessionScreen) toggleRecording() (screen.Screen, tea.Cmd) {
	if s.recorder == nil {
		return s, nil
	}

	if s.engine.Recording() {
		s.engine.SetRecording(false)
		return s, func() tea.Msg {
			clip, mime, err := s.recorder.Stop()
			return recordingStoppedMsg{Clip: clip, MIME: mime, Err: err}
		}
	}

	if err := s.engine.SetRecording(true); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if s.player != nil {
		s.player.Stop()
	}
	if err := s.recorder.Start(); err != nil {
		s.engine.SetRecording(false)
		s.errMsg = err.Error()
	}
	return s, nil
}

func (s *SessionScreen) handleRecordingStopped(msg recordingStoppedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, audio.ErrMicrophoneDenied) {
			s.errMsg = "Microphone access denied. Check your input device."
		} else {
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}

	s.inFlight = true
	return s, func() tea.Msg {
		update, err := s.engine.SendAudio(context.Background(), msg.Clip, msg.MIME)
		return turnMsg{Update: update, Err: err}
	}
}

// saveVisualAid writes the Task 1 figure to a temp file so the student can
// open it; terminals can't render the image itself.
func saveVisualAid(img []byte) tea.Cmd {
	return func() tea.Msg {
		f, err := os.CreateTemp("", "bandup-task1-*.png")
		if err != nil {
			return visualAidSavedMsg{Err: err}
		}
		defer f.Close()
		if _, err := f.Write(img); err != nil {
			return visualAidSavedMsg{Err: err}
		}
		return visualAidSavedMsg{Path: f.Name()}
	}
}
