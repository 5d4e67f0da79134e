// Package file implements the local file tools. Outcomes are typed
// results rendered to text at the adapter boundary: filesystem failures
// are data for the model, never errors thrown at the agent loop.
package file

import "fmt"

// ResultKind classifies a file operation outcome.
type ResultKind string

const (
	// ResultOK marks a successful operation.
	ResultOK ResultKind = "ok"
	// ResultMissing marks a path that does not exist or is unreadable.
	ResultMissing ResultKind = "missing"
	// ResultRefused marks an operation declined by its own preconditions,
	// like writing over an existing file with overwrite disabled.
	ResultRefused ResultKind = "refused"
	// ResultFailed marks an operation the filesystem rejected.
	ResultFailed ResultKind = "failed"
)

// Result is the outcome of one file operation.
type Result struct {
	Kind    ResultKind
	Message string
}

// Text renders the result for injection into the conversation.
func (r Result) Text() string {
	if r.Kind == ResultOK {
		return r.Message
	}
	return fmt.Sprintf("error (%s): %s", r.Kind, r.Message)
}

func ok(format string, args ...any) Result {
	return Result{Kind: ResultOK, Message: fmt.Sprintf(format, args...)}
}

func missing(format string, args ...any) Result {
	return Result{Kind: ResultMissing, Message: fmt.Sprintf(format, args...)}
}

func refused(format string, args ...any) Result {
	return Result{Kind: ResultRefused, Message: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...any) Result {
	return Result{Kind: ResultFailed, Message: fmt.Sprintf(format, args...)}
}
