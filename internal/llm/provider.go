package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the external generation service. The
// tutor engine, placement test, and module catalog all speak through it.
type Provider interface {
	// Generate sends the conversation to the model and returns its reply.
	// When the request carries a Schema, the provider uses its native
	// structured-output mechanism and the response Content is the
	// validated JSON. Otherwise Content is the raw reply text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// SpeechSynthesizer is an optional provider capability: turning tutor text
// into audio for listening and speaking practice. A nil clip with a nil
// error means the capability is unavailable, not that the call failed.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// ImageSynthesizer is an optional provider capability: rendering a chart or
// diagram described by descriptor (academic writing Task 1 material). Same
// nil-blob convention as SpeechSynthesizer.
type ImageSynthesizer interface {
	SynthesizeImage(ctx context.Context, descriptor string) ([]byte, error)
}

// Request describes one call to the model.
type Request struct {
	// System frames the model's role (tutor persona, module, band level).
	System string

	// Messages is the session transcript so far, oldest first. The
	// final message is the turn awaiting a reply.
	Messages []Message

	// Schema, when set, is the JSON Schema the reply must conform to.
	Schema *Schema

	// MaxTokens caps the reply length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero means deterministic.
	Temperature float64
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string

	// Audio is optional inline audio attached to a user turn (a spoken
	// answer in a speaking session). Providers without audio input
	// return ErrUnsupportedMedia.
	Audio     []byte
	AudioMIME string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "placement-questions".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the reply. Validated JSON when a Schema was requested,
	// raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Text returns the response content as plain text.
func (r *Response) Text() string {
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
