// Package orchestrator drives the agent loop: it owns the working
// message sequence for one invocation, calls the remote model, routes
// tool-call requests to the registered tools, and terminates with a
// final answer, an iteration-exhaustion result, or a failure.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"aido/internal/history"
	"aido/internal/orchestrator/adapter"
	"aido/internal/policy"
	"aido/internal/provider/model"

	"github.com/charmbracelet/log"
)

// ErrNoProvider is returned when the Orchestrator is built without a
// model provider.
var ErrNoProvider = errors.New("orchestrator: no provider configured")

// Outcome is the terminal state of one invocation.
type Outcome string

const (
	// OutcomeFinalized means the model produced a final text answer.
	OutcomeFinalized Outcome = "finalized"
	// OutcomeExhausted means the tool-loop budget ran out before the
	// model produced final text. This is a reportable result, not an
	// error.
	OutcomeExhausted Outcome = "iterations_exhausted"
)

// ExhaustedText is the sentinel answer returned when the loop budget
// runs out.
const ExhaustedText = "maximum iterations reached"

// Result is what one invocation produced. Text is unwrapped; display
// formatting is the caller's concern.
type Result struct {
	Outcome Outcome
	Text    string
}

// Options wires an Orchestrator.
type Options struct {
	Provider     model.Provider
	Tools        []adapter.Tool
	History      *history.Store
	Config       policy.EffectiveConfig
	SystemPrompt string
	Logger       *log.Logger
}

// Orchestrator runs the bounded conversation loop for one invocation.
type Orchestrator struct {
	provider     model.Provider
	tools        map[string]adapter.Tool
	defs         []model.ToolDefinition
	history      *history.Store
	cfg          policy.EffectiveConfig
	systemPrompt string
	logger       *log.Logger
}

// New builds an Orchestrator from its collaborators.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tools := make(map[string]adapter.Tool, len(opts.Tools))
	defs := make([]model.ToolDefinition, 0, len(opts.Tools))
	for _, t := range opts.Tools {
		tools[t.Name()] = t
		defs = append(defs, t.Definition())
	}
	return &Orchestrator{
		provider:     opts.Provider,
		tools:        tools,
		defs:         defs,
		history:      opts.History,
		cfg:          opts.Config,
		systemPrompt: opts.SystemPrompt,
		logger:       logger,
	}
}

// Run executes the loop for a single user query. The working messages
// are seeded from the system prompt and the trailing history window;
// only the user query and the final answer reach persisted history, and
// only after successful finalization.
func (o *Orchestrator) Run(ctx context.Context, query string) (*Result, error) {
	if o.provider == nil {
		return nil, ErrNoProvider
	}

	messages := o.seedMessages(query)
	o.history.Append(model.RoleUser, query)

	for iteration := 1; iteration <= o.cfg.ToolLoops; iteration++ {
		o.logger.Debug("calling model", "iteration", iteration, "messages", len(messages))

		resp, err := o.provider.Generate(ctx, &model.GenerateRequest{
			Model:     o.cfg.Model,
			MaxTokens: o.cfg.MaxTokens,
			Messages:  messages,
			Tools:     o.defs,
		})
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) > 0 {
			messages = append(messages, o.dispatch(ctx, resp.Message.ToolCalls)...)
			continue
		}

		o.history.Append(model.RoleAssistant, resp.Message.Content)
		if err := o.history.Save(); err != nil {
			return nil, fmt.Errorf("persist history: %w", err)
		}
		return &Result{Outcome: OutcomeFinalized, Text: resp.Message.Content}, nil
	}

	o.logger.Debug("tool loop budget exhausted", "budget", o.cfg.ToolLoops)
	return &Result{Outcome: OutcomeExhausted, Text: ExhaustedText}, nil
}

// seedMessages builds the initial working sequence: system context, the
// trailing persisted history window, then the current query.
func (o *Orchestrator) seedMessages(query string) []model.Message {
	messages := []model.Message{{Role: model.RoleSystem, Content: o.systemPrompt}}
	for _, entry := range o.history.Recent(history.ContextWindow) {
		messages = append(messages, model.Message{Role: entry.Role, Content: entry.Content})
	}
	return append(messages, model.Message{Role: model.RoleUser, Content: query})
}

// dispatch runs each requested tool call and renders every outcome,
// including unknown tools and undecodable arguments, as a tool-result
// turn. Tool problems are data for the model, never loop failures.
func (o *Orchestrator) dispatch(ctx context.Context, calls []model.ToolCall) []model.Message {
	results := make([]model.Message, 0, len(calls))
	for _, call := range calls {
		results = append(results, model.Message{
			Role:       model.RoleTool,
			Content:    o.execute(ctx, call),
			ToolCallID: call.ID,
			Name:       call.Name,
		})
	}
	return results
}

func (o *Orchestrator) execute(ctx context.Context, call model.ToolCall) string {
	tool, ok := o.tools[call.Name]
	if !ok {
		o.logger.Warn("model requested unknown tool", "tool", call.Name)
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}

	args, err := decodeCallArguments(call.Arguments)
	if err != nil {
		return fmt.Sprintf("error: invalid arguments for %s: %v", call.Name, err)
	}

	o.logger.Debug("dispatching tool", "tool", call.Name)
	out, err := tool.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("error: %s: %v", call.Name, err)
	}
	return out
}
