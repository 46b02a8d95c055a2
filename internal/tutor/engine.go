// Package tutor runs one tutoring session: a state machine over the
// conversation with the model, the markup parser, and the interactive
// question collector. A session ends by handing a SessionOutcome to the
// profile layer; the engine never writes the profile itself.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/abhisek/bandup/internal/llm"
	"github.com/abhisek/bandup/internal/profile"
	"github.com/abhisek/bandup/internal/protocol"
)

// Phase is the session lifecycle state.
type Phase int

const (
	// PhaseInitializing covers the opening request; nothing is shown yet.
	PhaseInitializing Phase = iota

	// PhaseActive means the tutor has spoken and input is accepted.
	PhaseActive

	// PhaseAwaiting means a turn is in flight; input is rejected.
	PhaseAwaiting

	// PhaseComplete is terminal: the outcome is ready for merging.
	PhaseComplete

	// PhaseFailed is terminal: the opening request never succeeded.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Errors returned by engine entry points. A GenerationError wraps a failed
// model call; the session stays active and the failure is also surfaced as
// a notice turn in the transcript.
var (
	ErrBusy      = errors.New("a turn is already in flight")
	ErrNotActive = errors.New("session is not accepting input")
)

// GenerationError marks a recoverable model failure during an active session.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "turn generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Role distinguishes transcript turns.
type Role string

const (
	RoleUser  Role = "user"
	RoleTutor Role = "tutor"
)

// Turn is one transcript entry. Tutor turns carry the parsed form; Notice
// marks a locally generated error message rather than model output.
type Turn struct {
	Role   Role
	Text   string
	Parsed protocol.Result
	Notice bool

	// Spoken answer attached to a user turn, replayed as model input.
	Audio     []byte
	AudioMIME string
}

// TurnUpdate is what an entry point hands back to the UI: the tutor turn
// that was appended, optional synthesized media, and whether the session
// just completed.
type TurnUpdate struct {
	Turn      Turn
	Speech    []byte
	VisualAid []byte
	Completed bool
}

// SessionResult bundles what a finished session hands over for merging and
// display: the extraction plus every correction issued along the way.
type SessionResult struct {
	Outcome     profile.SessionOutcome
	Corrections []protocol.Correction
}

// Config describes the session being run.
type Config struct {
	Skill             profile.Skill
	Track             profile.ExamTrack
	ModuleTitle       string
	ModuleDescription string

	// Band is the student's estimated band, zero when unassessed.
	Band float64

	MaxTokens   int
	Temperature float64
}

// Engine drives a single tutoring session. All entry points are single
// flight: while a request is outstanding every other call fails with
// ErrBusy, so the transcript can never interleave.
type Engine struct {
	cfg      Config
	provider llm.Provider
	media    llm.Media

	mu          sync.Mutex
	phase       Phase
	recording   bool
	inflight    bool
	transcript  []Turn
	collector   *Collector
	corrections []protocol.Correction
	outcome     *profile.SessionOutcome

	cancel context.CancelFunc
}

// New builds an engine in PhaseInitializing. Nothing is sent until Start.
func New(provider llm.Provider, media llm.Media, cfg Config) *Engine {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &Engine{
		cfg:       cfg,
		provider:  provider,
		media:     media,
		phase:     PhaseInitializing,
		collector: NewCollector(),
	}
}

// Phase returns the current lifecycle state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Recording reports the speaking sub-state. It is orthogonal to the phase:
// an active speaking session is either idle or capturing the microphone.
func (e *Engine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recording
}

// SetRecording toggles the speaking sub-state. It only applies to active
// speaking sessions.
func (e *Engine) SetRecording(on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cfg.Skill != profile.SkillSpeaking {
		return fmt.Errorf("recording is only available in speaking sessions")
	}
	if e.phase != PhaseActive {
		return ErrNotActive
	}
	e.recording = on
	return nil
}

// Transcript returns a copy of the conversation so far.
func (e *Engine) Transcript() []Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Turn, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Collector exposes the live question set for the answer form.
func (e *Engine) Collector() *Collector {
	return e.collector
}

// Corrections returns every language correction issued this session.
func (e *Engine) Corrections() []protocol.Correction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]protocol.Correction, len(e.corrections))
	copy(out, e.corrections)
	return out
}

// Outcome returns the session extraction once the session has completed.
func (e *Engine) Outcome() (profile.SessionOutcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome == nil {
		return profile.SessionOutcome{}, false
	}
	return *e.outcome, true
}

// Close cancels any in-flight request. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Start issues the opening request. A failure here is terminal: there is no
// conversation to recover into, so the session moves to PhaseFailed.
func (e *Engine) Start(ctx context.Context) (*TurnUpdate, error) {
	e.mu.Lock()
	if e.phase != PhaseInitializing {
		e.mu.Unlock()
		return nil, ErrNotActive
	}
	if e.inflight {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.inflight = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.transcript = append(e.transcript, Turn{Role: RoleUser, Text: openingPrompt(e.cfg)})
	req := e.buildRequest()
	e.mu.Unlock()

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, "tutor-turn"), req)
	if err != nil {
		e.mu.Lock()
		e.inflight = false
		e.phase = PhaseFailed
		e.mu.Unlock()
		return nil, &GenerationError{Err: err}
	}

	update := e.commitTutorTurn(ctx, resp.Text())

	if e.needsVisualAid() {
		if img := e.synthesizeVisualAid(ctx); img != nil {
			update.VisualAid = img
		}
	}

	e.mu.Lock()
	e.inflight = false
	e.mu.Unlock()
	return update, nil
}

// SendText submits a free-form learner turn.
func (e *Engine) SendText(ctx context.Context, text string) (*TurnUpdate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Reason: "message is empty"}
	}
	return e.send(ctx, Turn{Role: RoleUser, Text: text})
}

// SendAnswers builds a submission from the collector and sends it. The
// collector validates completeness; a ValidationError leaves the pending
// set and the transcript untouched.
func (e *Engine) SendAnswers(ctx context.Context) (*TurnUpdate, error) {
	// Building the submission clears the collector, so it has to happen
	// inside the send critical section: a concurrent sender winning the
	// in-flight slot between build and send would drop the answers.
	return e.sendWith(ctx, func() (Turn, error) {
		text, err := e.collector.BuildSubmission()
		if err != nil {
			return Turn{}, err
		}
		return Turn{Role: RoleUser, Text: text}, nil
	})
}

// SendAudio submits a spoken answer. Providers without audio input reject
// it with llm.ErrUnsupportedMedia, surfaced as a notice turn like any other
// generation failure.
func (e *Engine) SendAudio(ctx context.Context, clip []byte, mime string) (*TurnUpdate, error) {
	if len(clip) == 0 {
		return nil, &ValidationError{Reason: "recording is empty"}
	}
	return e.send(ctx, Turn{
		Role:      RoleUser,
		Text:      "(spoken answer)",
		Audio:     clip,
		AudioMIME: mime,
	})
}

// send appends the user turn, runs the model round trip, and commits the
// reply. A generation failure appends a notice turn and returns the session
// to PhaseActive; the conversation survives.
func (e *Engine) send(ctx context.Context, user Turn) (*TurnUpdate, error) {
	return e.sendWith(ctx, func() (Turn, error) { return user, nil })
}

// sendWith is send with the user turn produced under the engine lock, after
// the phase and in-flight checks have passed. build must not block.
func (e *Engine) sendWith(ctx context.Context, build func() (Turn, error)) (*TurnUpdate, error) {
	e.mu.Lock()
	if e.phase != PhaseActive {
		e.mu.Unlock()
		return nil, ErrNotActive
	}
	if e.inflight {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	user, err := build()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.inflight = true
	e.recording = false
	e.phase = PhaseAwaiting
	ctx, e.cancel = context.WithCancel(ctx)
	e.transcript = append(e.transcript, user)
	req := e.buildRequest()
	e.mu.Unlock()

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, "tutor-turn"), req)
	if err != nil {
		notice := "I ran into a problem generating that response. Let's try again — please resend your last message or continue where we left off."
		e.mu.Lock()
		turn := Turn{Role: RoleTutor, Text: notice, Parsed: protocol.Parse(notice), Notice: true}
		e.transcript = append(e.transcript, turn)
		e.phase = PhaseActive
		e.inflight = false
		e.mu.Unlock()
		return &TurnUpdate{Turn: turn}, &GenerationError{Err: err}
	}

	update := e.commitTutorTurn(ctx, resp.Text())

	e.mu.Lock()
	e.inflight = false
	e.mu.Unlock()
	return update, nil
}

// commitTutorTurn parses the reply, refreshes the collector, synthesizes
// speech for audible skills, and advances the phase. On a terminal turn it
// also runs the end-of-session extraction before reporting completion.
func (e *Engine) commitTutorTurn(ctx context.Context, raw string) *TurnUpdate {
	parsed := protocol.Parse(raw)
	turn := Turn{Role: RoleTutor, Text: raw, Parsed: parsed}

	var speech []byte
	if e.audibleSkill() && e.media.Speech != nil {
		if spoken := protocol.SpeechText(raw); spoken != "" {
			clip, err := e.media.Speech.SynthesizeSpeech(llm.WithPurpose(ctx, "speech"), spoken)
			if err == nil {
				speech = clip
			}
		}
	}

	e.mu.Lock()
	e.transcript = append(e.transcript, turn)
	e.collector.Reset(parsed.Directives)
	e.corrections = append(e.corrections, parsed.Corrections()...)
	if parsed.Terminal {
		e.phase = PhaseComplete
	} else {
		e.phase = PhaseActive
	}
	transcript := make([]Turn, len(e.transcript))
	copy(transcript, e.transcript)
	e.mu.Unlock()

	update := &TurnUpdate{Turn: turn, Speech: speech}
	if parsed.Terminal {
		outcome := e.extractOutcome(ctx, transcript)
		e.mu.Lock()
		e.outcome = &outcome
		e.mu.Unlock()
		update.Completed = true
	}
	return update
}

func (e *Engine) audibleSkill() bool {
	return e.cfg.Skill == profile.SkillSpeaking || e.cfg.Skill == profile.SkillListening
}

// buildRequest snapshots the transcript as model messages. Caller holds the
// lock.
func (e *Engine) buildRequest() llm.Request {
	msgs := make([]llm.Message, 0, len(e.transcript))
	for _, t := range e.transcript {
		role := llm.RoleAssistant
		if t.Role == RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{
			Role:      role,
			Content:   t.Text,
			Audio:     t.Audio,
			AudioMIME: t.AudioMIME,
		})
	}
	return llm.Request{
		System:      systemPrompt(e.cfg),
		Messages:    msgs,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}
}

// summary is the wire shape of the end-of-session extraction.
type summary struct {
	Vocabulary []string `json:"vocabulary"`
	Grammar    []string `json:"grammar"`
	Feedback   string   `json:"feedback"`
}

var summarySchema = &llm.Schema{
	Name:        "session-summary",
	Description: "Vocabulary, grammar points and feedback extracted from a completed tutoring session.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vocabulary": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"grammar": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"feedback": map[string]any{"type": "string"},
		},
		"required": []any{"vocabulary", "grammar", "feedback"},
	},
}

// extractOutcome runs one structured request over the finished transcript.
// Any failure degrades to an empty extraction with a stock feedback line so
// completion is never blocked on the extraction call.
func (e *Engine) extractOutcome(ctx context.Context, transcript []Turn) profile.SessionOutcome {
	outcome := profile.SessionOutcome{
		Skill:       e.cfg.Skill,
		ModuleTitle: e.cfg.ModuleTitle,
		Feedback:    "Session complete. Keep practising!",
	}

	msgs := make([]llm.Message, 0, len(transcript)+1)
	for _, t := range transcript {
		role := llm.RoleAssistant
		if t.Role == RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: summaryPrompt()})

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, "session-summary"), llm.Request{
		System:    systemPrompt(e.cfg),
		Messages:  msgs,
		Schema:    summarySchema,
		MaxTokens: e.cfg.MaxTokens,
	})
	if err != nil {
		return outcome
	}

	var s summary
	if err := json.Unmarshal(resp.Content, &s); err != nil {
		return outcome
	}
	outcome.Vocab = s.Vocabulary
	outcome.Grammar = s.Grammar
	if s.Feedback != "" {
		outcome.Feedback = s.Feedback
	}
	return outcome
}

// needsVisualAid reports whether the module is academic writing Task 1,
// which is taught against a chart or diagram.
func (e *Engine) needsVisualAid() bool {
	if e.cfg.Skill != profile.SkillWriting || e.cfg.Track != profile.TrackAcademic {
		return false
	}
	text := strings.ToLower(e.cfg.ModuleTitle + " " + e.cfg.ModuleDescription)
	return strings.Contains(text, "task 1")
}

var chartKinds = []string{
	"bar chart comparing values across five categories",
	"line graph showing a trend over a ten-year period",
	"pie chart splitting a total into four segments",
	"table of figures across three groups and four years",
	"process diagram with six labelled stages",
}

// synthesizeVisualAid renders Task 1 material. Failures and missing
// capability both degrade to no image.
func (e *Engine) synthesizeVisualAid(ctx context.Context) []byte {
	if e.media.Image == nil {
		return nil
	}
	descriptor := fmt.Sprintf(
		"A clean, exam-style IELTS Academic Writing Task 1 figure: a %s, with axis labels and a short title, on a white background.",
		chartKinds[rand.Intn(len(chartKinds))])
	img, err := e.media.Image.SynthesizeImage(llm.WithPurpose(ctx, "visual-aid"), descriptor)
	if err != nil {
		return nil
	}
	return img
}
