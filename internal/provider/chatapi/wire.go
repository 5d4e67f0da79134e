package chatapi

import (
	"encoding/json"

	"aido/internal/provider/model"
)

// Wire shapes for the chat-completions contract.

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []wireMessage `json:"messages"`
	Tools      []wireTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	MaxTokens  int           `json:"max_tokens,omitempty"`
	Stream     bool          `json:"stream"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    any            `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string      `json:"type"`
	Function wireToolDef `json:"function"`
}

type wireToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  *model.ParameterSchema `json:"parameters,omitempty"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Error   *apiErrBody  `json:"error,omitempty"`
}

type chatChoice struct {
	FinishReason string          `json:"finish_reason"`
	Message      wireRespMessage `json:"message"`
}

type wireRespMessage struct {
	Role      string         `json:"role"`
	Content   any            `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type apiErrBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// wireRequest converts an internal request into the wire shape. Assistant
// tool-call turns keep a null content field when they carried no text, and
// tool-result turns carry their call id and tool name.
func wireRequest(req *model.GenerateRequest) chatRequest {
	out := chatRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Stream:    false,
	}
	for _, m := range req.Messages {
		wm := wireMessage{
			Role:       m.Role,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == model.RoleTool {
			wm.Name = m.Name
		}
		if len(m.ToolCalls) > 0 {
			for _, tc := range m.ToolCalls {
				wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: wireFunction{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			if m.Content == "" {
				wm.Content = nil
			} else {
				wm.Content = m.Content
			}
		} else {
			wm.Content = m.Content
		}
		out.Messages = append(out.Messages, wm)
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, wireTool{
			Type: "function",
			Function: wireToolDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if len(out.Tools) > 0 {
		out.ToolChoice = "auto"
	}
	return out
}

// contentString flattens a content field that may arrive as a string,
// null, or structured parts.
func contentString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
