// Package llm defines the Provider interface for Large Language Model backends.
//
// The humanizer uses an LLM only as an optional synonym source: it asks for a
// short JSON list of substitutes for one word at a time. The interface is
// therefore limited to single-shot completions.
//
// Implementors must be safe for concurrent use.
package llm

import "context"

// Message is one turn of a conversation.
type Message struct {
	// Role is one of "system", "user" or "assistant".
	Role string

	// Content is the text of the message.
	Content string
}

// Usage holds token accounting returned by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the LLM needs to produce a response.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is sent ahead of Messages with the "system" role.
	SystemPrompt string

	// Messages is the ordered conversation history.
	Messages []Message

	// Temperature in [0, 2]. Zero leaves the provider default in place.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// JSON asks the backend to constrain its output to a single JSON object
	// where supported. Callers must still tolerate non-JSON replies.
	JSON bool
}

// CompletionResponse is the result of a completion.
type CompletionResponse struct {
	Content string
	Usage   Usage
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Model returns the model identifier requests are sent to.
	Model() string
}
