// Package recursion detects self-invocations of aido inside shell commands
// requested by the model and rewrites them to carry an incremented depth
// marker. Detection is a narrowly scoped heuristic over the command head;
// a self-invocation hidden inside quoted text or composed via indirection
// is not recognized, which is an accepted limitation.
package recursion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DepthVar is the environment variable carrying the recursion depth
	// into a child invocation. The guard is the only code that writes it.
	DepthVar = "AIDO_DEPTH"

	// Program is the tool's own program name, matched against command heads.
	Program = "aido"
)

var envAssignRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=\S*$`)

// ParseDepth interprets the raw environment value leniently: absent,
// negative, or non-numeric values mean depth 0. It never errors.
func ParseDepth(raw string) int {
	d, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Guard rewrites shell commands that invoke the tool itself.
type Guard struct {
	installPath string
	maxDepth    int
}

// NewGuard creates a Guard. installPath is the fully qualified path of the
// running binary (may be empty when unknown); maxDepth is the policy's
// recursion ceiling.
func NewGuard(installPath string, maxDepth int) *Guard {
	return &Guard{installPath: installPath, maxDepth: maxDepth}
}

// MaxDepth returns the configured recursion ceiling.
func (g *Guard) MaxDepth() int {
	return g.maxDepth
}

// Decorate inspects command for self-invocation at the given depth.
// Non-self-invocations pass through unchanged. At or above the depth
// ceiling the command is replaced with a no-op that emits a depth-limit
// message, so the caller still sees a textual result. Below the ceiling
// any pre-existing depth marker is stripped and a fresh marker encoding
// depth+1 is prepended, with the rest of the command untouched.
func (g *Guard) Decorate(command string, depth int) string {
	assigns, rest := splitLeadingAssignments(command)
	head := commandHead(rest)
	if head == "" || !g.isSelf(head) {
		return command
	}

	if depth >= g.maxDepth {
		msg := fmt.Sprintf("%s: recursion depth limit reached (depth %d, max %d); nested invocation refused",
			Program, depth, g.maxDepth)
		return fmt.Sprintf("echo %q", msg)
	}

	kept := make([]string, 0, len(assigns)+1)
	kept = append(kept, fmt.Sprintf("%s=%d", DepthVar, depth+1))
	for _, a := range assigns {
		if strings.HasPrefix(a, DepthVar+"=") {
			continue
		}
		kept = append(kept, a)
	}
	return strings.Join(kept, " ") + " " + rest
}

// isSelf reports whether head names this tool: the bare program name or
// its fully qualified install path, exactly.
func (g *Guard) isSelf(head string) bool {
	if head == Program {
		return true
	}
	return g.installPath != "" && head == g.installPath
}

// splitLeadingAssignments peels NAME=value tokens off the front of the
// command and returns them along with the remainder of the original
// string, whitespace inside the remainder preserved.
func splitLeadingAssignments(command string) (assigns []string, rest string) {
	rest = command
	for {
		trimmed := strings.TrimLeft(rest, " \t")
		token := trimmed
		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			token = trimmed[:i]
		}
		if token == "" || !envAssignRe.MatchString(token) {
			return assigns, trimmed
		}
		assigns = append(assigns, token)
		rest = trimmed[len(token):]
	}
}

func commandHead(rest string) string {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
