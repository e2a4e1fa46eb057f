package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/criblink/featured/internal/api"
	"github.com/criblink/featured/internal/feed"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	// ExitSuccess is returned when the command succeeds.
	ExitSuccess = 0
	// ExitNotFound is returned when no listings, rows or regions are available.
	ExitNotFound = 1
	// ExitInvalidArgs is returned when the command input is invalid.
	ExitInvalidArgs = 2
	// ExitUpstream is returned when an external dependency fails.
	ExitUpstream = 3
	// ExitInternal is returned for unexpected internal failures.
	ExitInternal = 4
)

const (
	codeInvalidArgs = "INVALID_ARGS"
	codeNotFound    = "NOT_FOUND"
	codeUpstream    = "UPSTREAM_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

// cliError is a failure already placed in the exit code taxonomy.
type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int

	cause error
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *cliError) Unwrap() error { return e.cause }

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{Code: codeInvalidArgs, Message: message, Suggestions: suggestions, ExitCode: ExitInvalidArgs}
}

func notFoundError(message string, suggestions ...string) error {
	return &cliError{Code: codeNotFound, Message: message, Suggestions: suggestions, ExitCode: ExitNotFound}
}

// backendError places a failed call to the marketplace API. A status the
// backend uses for a missing resource is NOT_FOUND; every other failure
// is UPSTREAM_ERROR.
func backendError(action string, err error) *cliError {
	e := &cliError{
		Code:        codeUpstream,
		Message:     fmt.Sprintf("%s: %v", action, err),
		Suggestions: []string{"Retry in a moment."},
		ExitCode:    ExitUpstream,
		cause:       err,
	}

	var status *api.StatusError
	switch {
	case errors.As(err, &status) && status.NotFound():
		e.Code, e.ExitCode = codeNotFound, ExitNotFound
		e.Suggestions = []string{"Check that --api points at the marketplace API root."}
	case errors.As(err, &status) && status.Code < 500:
		e.Suggestions = []string{"The backend rejected the request; check --api and retry."}
	case errors.Is(err, context.DeadlineExceeded):
		e.Suggestions = []string{"The backend timed out; retry in a moment."}
	}
	return e
}

// flagError is the FlagErrorFunc for the whole tree. Unknown long flags
// get the nearest known spelling as a suggestion.
func flagError(_ *cobra.Command, err error) error {
	suggestions := []string{"criblink --region Lagos", "criblink --lat 6.5244 --lon 3.3792 --explain"}

	var unknown *pflag.NotExistError
	if errors.As(err, &unknown) && unknown.GetSpecifiedShortnames() == "" {
		if name, ok := resolveFlagName(unknown.GetSpecifiedName()); ok {
			suggestions = append([]string{fmt.Sprintf("Try `--%s`.", name)}, suggestions...)
		}
	}
	return &cliError{
		Code:        codeInvalidArgs,
		Message:     err.Error(),
		Suggestions: suggestions,
		ExitCode:    ExitInvalidArgs,
		cause:       err,
	}
}

// rootArgs rejects positional words on the feed command, pointing at the
// closest subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	suggestions := []string{"criblink zones", "criblink regions"}
	if name, ok := closestMatch(strings.ToLower(args[0]), cliVocab().commands, 2); ok {
		suggestions = append([]string{fmt.Sprintf("Did you mean `%s`?", name)}, suggestions...)
	}
	return invalidArgsError(fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()), suggestions...)
}

// classifyCLIError places err in the taxonomy. It returns nil for errors
// that are not failures of the command, such as a refresh replaced by a
// newer one.
func classifyCLIError(err error) *cliError {
	if err == nil || errors.Is(err, feed.ErrSuperseded) {
		return nil
	}

	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	var status *api.StatusError
	if errors.As(err, &status) {
		return backendError("calling the marketplace API", err)
	}

	return &cliError{
		Code:        codeInternal,
		Message:     strings.TrimSpace(err.Error()),
		Suggestions: []string{"Run `criblink --help` for usage details."},
		ExitCode:    ExitInternal,
		cause:       err,
	}
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(jsonErrorPayload{Error: jsonErrorBody{
		Code:        err.Code,
		Message:     err.Message,
		Suggestions: err.Suggestions,
		ExitCode:    err.ExitCode,
	}})
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s", strings.ToLower(err.Code), err.Message)
	if len(err.Suggestions) > 0 {
		b.WriteString("\nsuggestions:")
		for _, s := range err.Suggestions {
			b.WriteString("\n  " + s)
		}
	}
	return b.String()
}

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func wantsJSON(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--json" || strings.HasPrefix(arg, "--json=") {
			return true
		}
	}
	return false
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// shouldAutoJSON switches to JSON when stdout is piped, except for
// commands whose output is meant for people or shells.
func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 || wantsJSON(args) || wantsHelp(args) {
		return false
	}
	switch firstCommand(args) {
	case "completion", "help":
		return false
	}
	return true
}

// firstCommand returns the first positional word, skipping flag values.
func firstCommand(args []string) string {
	vocab := cliVocab()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return ""
		case !strings.HasPrefix(arg, "-"):
			return arg
		case strings.HasPrefix(arg, "--"):
			name, rest := splitFlag(arg[2:])
			if vocab.flags[name] && rest == "" {
				i++
			}
		case len(arg) == 2 && vocab.shorthands[arg[1]]:
			i++
		}
	}
	return ""
}
