// Package model defines the minimal chat-completion interface the response
// generator drafts answers through, normalized across providers. Adapters
// for the official OpenAI and Anthropic SDKs live in subpackages; MockModel
// provides deterministic completions for tests.
//
// Generation is non-streaming on purpose: every draft passes through the
// validation gate before anything reaches the user, so there is nothing to
// stream until the answer is accepted.
package model

import (
	"context"
	"fmt"

	"github.com/salespage/chatkit/core"
)

// Request captures the normalized model input produced by the generator.
type Request struct {
	// System is the system prompt; providers map it to their native slot.
	System string
	// Messages are the conversation turns, oldest first, user/assistant
	// roles only.
	Messages []core.Message
	// MaxTokens caps the completion length. Zero uses the adapter default.
	MaxTokens int64
	// Temperature is passed through when positive.
	Temperature float64
}

// Response is a completed (non-streaming) model answer.
type Response struct {
	Text         string
	FinishReason string
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the interface the response generator drives drafting through.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses
// are keyed on the latest user message.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockModel) AddResponse(input, response string) { m.responses[input] = response }

// Fail makes every Generate call return err, simulating an unavailable
// provider.
func (m *MockModel) Fail(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (Response, error) {
	if m.err != nil {
		return Response{}, m.err
	}
	if len(req.Messages) == 0 {
		return Response{}, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1].Content
	text, ok := m.responses[last]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", last)
	}
	return Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
