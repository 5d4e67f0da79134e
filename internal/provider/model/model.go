package model

import "context"

// Message roles mirror the chat-completions wire contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn in the working conversation. Assistant turns may
// carry tool-call requests; tool turns carry the result of exactly one
// call, identified by ToolCallID.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolCall is a structured request from the model to invoke a local tool.
// Arguments is the raw JSON argument object as sent by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition defines a tool the model can invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema
}

// ParameterSchema maps directly to standard JSON Schema.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema defines a single parameter property.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// GenerateRequest encapsulates all parameters for one remote call.
type GenerateRequest struct {
	Model     string
	MaxTokens int
	Messages  []Message
	Tools     []ToolDefinition
}

// GenerateResponse carries the assistant turn exactly as the endpoint
// produced it, so the caller can append it to the conversation verbatim.
type GenerateResponse struct {
	Message      Message
	FinishReason string
}

// Provider performs the remote model call.
type Provider interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
