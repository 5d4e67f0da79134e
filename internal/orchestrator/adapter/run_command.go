package adapter

import (
	"context"

	"aido/internal/provider/model"
	"aido/internal/recursion"
	"aido/internal/tool/shell"
)

// RunCommand executes shell commands after passing them through the
// recursion guard at the invocation's depth.
type RunCommand struct {
	executor *shell.Executor
	guard    *recursion.Guard
	depth    int
}

// NewRunCommand wires the shell executor and recursion guard together.
func NewRunCommand(executor *shell.Executor, guard *recursion.Guard, depth int) *RunCommand {
	return &RunCommand{executor: executor, guard: guard, depth: depth}
}

func (t *RunCommand) Name() string { return "run_command" }

func (t *RunCommand) Description() string {
	return "Execute a shell command on the local machine and return its combined stdout and stderr."
}

func (t *RunCommand) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &model.ParameterSchema{
			Type: "object",
			Properties: map[string]model.PropertySchema{
				"command": {
					Type:        "string",
					Description: "The shell command to execute.",
				},
			},
			Required: []string{"command"},
		},
	}
}

type runCommandArgs struct {
	Command string `mapstructure:"command"`
}

func (t *RunCommand) Execute(ctx context.Context, args map[string]any) (string, error) {
	var req runCommandArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	command := t.guard.Decorate(req.Command, t.depth)
	return t.executor.Run(ctx, command), nil
}
