package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"aido/internal/config"
	"aido/internal/history"
	"aido/internal/orchestrator"
	"aido/internal/orchestrator/adapter"
	"aido/internal/policy"
	"aido/internal/prompt"
	"aido/internal/provider/chatapi"
	"aido/internal/recursion"
	"aido/internal/tool/shell"
	"aido/internal/ui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// errNoQuery is returned when neither arguments nor piped stdin supply
// a query.
var errNoQuery = errors.New("no query given: pass it as arguments or pipe it on stdin")

// rootFlags carries the command-line overrides and switches.
type rootFlags struct {
	model       string
	maxTokens   int
	toolLoops   int
	history     string
	printConfig bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "aido [query...]",
		Short: "Policy-governed agentic assistant for the command line",
		Long: `aido sends a query to a language-model endpoint and lets the model
drive local tools (run_command, write_file, read_file, file_info) until it
produces a final answer. Budgets, history handling, and recursion depth are
governed by a per-depth policy in ~/.config/aido/policy.json.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "", "override the model id")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "override the max output tokens")
	cmd.Flags().IntVar(&flags.toolLoops, "tool-loops", 0, "override the tool-loop budget")
	cmd.Flags().StringVar(&flags.history, "history", "", "override the history mode (persist|temp|none)")
	cmd.Flags().BoolVar(&flags.printConfig, "print-config", false, "print the resolved configuration and exit")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log loop and transport diagnostics to stderr")

	cmd.AddCommand(newHistoryCmd())
	return cmd
}

func run(cmd *cobra.Command, args []string, flags *rootFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	depth := recursion.ParseDepth(cfg.RawDepth)

	policyPath, err := cfg.PolicyPath()
	if err != nil {
		return err
	}
	pol, err := policy.Load(policyPath)
	if err != nil {
		return err
	}

	overrides, err := overridesFromFlags(flags)
	if err != nil {
		return err
	}
	effective := policy.Resolve(pol, depth, overrides)

	if flags.printConfig {
		return printResolvedConfig(cmd.OutOrStdout(), effective, depth, pol.Recursion.MaxDepth)
	}

	query, err := readQuery(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := cfg.ValidateCredential(); err != nil {
		return err
	}

	logger := log.New(io.Discard)
	if flags.verbose {
		logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: log.DebugLevel})
	}

	promptPath, err := cfg.PromptPath()
	if err != nil {
		return err
	}
	base, err := prompt.Load(promptPath)
	if err != nil {
		return err
	}

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	store := history.NewStore(effective.History, historyPath)
	if err := store.Load(); err != nil {
		return err
	}

	installPath, err := os.Executable()
	if err != nil {
		installPath = ""
	}
	guard := recursion.NewGuard(installPath, pol.Recursion.MaxDepth)

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "?"
	}
	host, err := os.Hostname()
	if err != nil {
		host = "?"
	}
	systemPrompt := prompt.SystemMessage(base, prompt.ContextInfo{
		Now:      time.Now(),
		WorkDir:  workDir,
		Host:     host,
		OS:       runtime.GOOS,
		Depth:    depth,
		MaxDepth: pol.Recursion.MaxDepth,
		Config:   effective,
	})

	client := chatapi.New(chatapi.Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		MaxAttempts: cfg.RetryAttempts,
		BackoffMax:  time.Duration(cfg.MaxBackoffSec) * time.Second,
		Pacing:      time.Duration(cfg.PacingMS) * time.Millisecond,
		Logger:      logger,
	})

	agent := orchestrator.New(orchestrator.Options{
		Provider: client,
		Tools: []adapter.Tool{
			adapter.NewRunCommand(shell.NewExecutor(0), guard, depth),
			adapter.NewWriteFile(),
			adapter.NewReadFile(),
			adapter.NewFileInfo(),
		},
		History:      store,
		Config:       effective,
		SystemPrompt: systemPrompt,
		Logger:       logger,
	})

	presenter := ui.NewPresenter(cmd.OutOrStdout(), cmd.ErrOrStderr(), ui.DefaultWidth)
	if flags.verbose {
		presenter.Status(fmt.Sprintf("depth %d, model %s, loops %d, history %s",
			depth, effective.Model, effective.ToolLoops, effective.History))
	}

	result, err := agent.Run(ctx, query)
	if err != nil {
		return err
	}
	if result.Outcome == orchestrator.OutcomeExhausted {
		presenter.Notice(result.Text)
		return nil
	}
	presenter.Answer(result.Text)
	return nil
}

// overridesFromFlags validates and converts the flag values. An invalid
// history mode is a usage error, not a silently ignored override.
func overridesFromFlags(flags *rootFlags) (policy.Overrides, error) {
	ov := policy.Overrides{
		Model:     flags.model,
		MaxTokens: flags.maxTokens,
		ToolLoops: flags.toolLoops,
	}
	if flags.history != "" {
		mode := policy.HistoryMode(flags.history)
		if !mode.Valid() {
			return policy.Overrides{}, fmt.Errorf("invalid history mode %q (want persist, temp, or none)", flags.history)
		}
		ov.History = mode
	}
	return ov, nil
}

// readQuery joins the arguments, falling back to piped stdin.
func readQuery(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return "", errNoQuery
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read query from stdin: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", errNoQuery
	}
	return query, nil
}

// printResolvedConfig dumps the effective configuration after policy
// merge, caps, and overrides, plus the depth facts it was resolved for.
func printResolvedConfig(w io.Writer, effective policy.EffectiveConfig, depth, maxDepth int) error {
	out := struct {
		Depth    int                    `json:"depth"`
		MaxDepth int                    `json:"max_depth"`
		Config   policy.EffectiveConfig `json:"config"`
	}{Depth: depth, MaxDepth: maxDepth, Config: effective}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
