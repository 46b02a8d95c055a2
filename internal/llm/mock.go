package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing. It returns canned
// responses in FIFO order and records all requests. It also implements the
// media capabilities, returning canned clips the same way.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	SpeechClips [][]byte
	ImageBlobs  [][]byte
	SpeechCalls []string
	ImageCalls  []string
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// SynthesizeSpeech returns the next canned speech clip, or nil when the
// queue is empty (the capability-unavailable convention).
func (m *MockProvider) SynthesizeSpeech(_ context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SpeechCalls = append(m.SpeechCalls, text)
	if len(m.SpeechClips) == 0 {
		return nil, nil
	}
	clip := m.SpeechClips[0]
	m.SpeechClips = m.SpeechClips[1:]
	return clip, nil
}

// SynthesizeImage returns the next canned image blob, or nil when the
// queue is empty.
func (m *MockProvider) SynthesizeImage(_ context.Context, descriptor string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImageCalls = append(m.ImageCalls, descriptor)
	if len(m.ImageBlobs) == 0 {
		return nil, nil
	}
	blob := m.ImageBlobs[0]
	m.ImageBlobs = m.ImageBlobs[1:]
	return blob, nil
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
