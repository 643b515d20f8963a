// Package report renders human-readable pipeline failure and summary
// output, styled in the teacher's manner (cmd/radx/internal/dicom/ui uses
// lipgloss for terminal styling; this package does the same for the
// operation-failure message spec §7 requires: a message plus the
// originating operation's name and argument snapshot).
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

var (
	failureHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	fieldStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// OperationFailure renders an *errs.OperationError as a styled,
// multi-line message: the failing operation's name, its cause, and its
// resolved argument snapshot sorted by key for determinism.
func OperationFailure(err *errs.OperationError) string {
	var b strings.Builder
	fmt.Fprintln(&b, failureHeaderStyle.Render(fmt.Sprintf("operation %q failed", err.OpName)))
	fmt.Fprintln(&b, fieldStyle.Render("cause: ")+err.Cause.Error())

	if len(err.Args) > 0 {
		keys := make([]string, 0, len(err.Args))
		for k := range err.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(&b, fieldStyle.Render("arguments:"))
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s = %s\n", k, err.Args[k])
		}
	}
	return b.String()
}

// Summary renders a terse one-line success message for a completed
// pipeline, e.g. after every operation in a run has dispatched cleanly.
func Summary(operationsRun int) string {
	return successStyle.Render(fmt.Sprintf("pipeline completed: %d operation(s) run", operationsRun))
}
