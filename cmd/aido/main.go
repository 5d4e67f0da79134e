// aido is a policy-governed command-line agent: it sends a query to a
// remote model, lets the model drive a small set of local tools, and
// bounds everything (token budget, tool loops, recursion depth) through
// a depth-aware policy.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
