package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text, mirroring
// the five output methods on UI. The print layer maps each value to the
// corresponding terminal style; data consumers (JSON, tests) see plain text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain
	SeveritySuccess                  // green, positive
	SeverityWarn                     // yellow, needs attention
	SeverityError                    // red, negative
	SeverityCritical                 // bold, review before signing
)

// StyledText pairs a plain string with a Severity annotation.
//
// JSON serialization: the struct marshals as just the plain Text string so
// consumers receive clean output with no ANSI codes and no extra structure.
//
// Terminal rendering: pass the value to [UI.Style] to obtain the
// appropriately coloured string for embedding in a format call:
//
//	u.Info("From: %s", u.Style(d.From))
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as a plain JSON string (just Text).
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI provides all terminal interaction for nftstake commands.
//
// It abstracts output, user prompts, and indentation so that:
//   - Production code uses TerminalUI (writes to os.Stdout, reads from os.Stdin)
//   - Tests use RecordingUI (captures all output, serves scripted inputs)
//
// Indentation / nesting
//
// Use [UI.Indent] to get a child UI at one deeper indent level. Pass the child
// into functions that need nested prompts (e.g. entering each array element
// inside a parameter). The child shares the same underlying writer and reader,
// so input sequencing is preserved across scopes.
//
// Echoing how arguments were read before acting on them:
//
//	ui.Info("Wallet: %s", addr)
//	ui.Interpret("3 tokens: 12, 40, 41") // "→ ..." shows what was understood
type UI interface {
	// --- Output ---

	// Style returns the text from t coloured according to its Severity.
	// Use this to embed a styled value inside a larger Info/Critical/... line:
	//
	//	u.Info("From: %s ===> %s", u.Style(d.From), u.Style(d.To))
	//
	// When colours are disabled (e.g. piped output, RecordingUI) the plain
	// text is returned unchanged.
	Style(t StyledText) string

	// Info writes a neutral status line (no prefix, no color).
	Info(format string, args ...any)

	// Success writes a positive outcome in green.
	Success(format string, args ...any)

	// Warn writes a non-fatal warning in yellow.
	Warn(format string, args ...any)

	// Error writes a failure in red.
	// It does not exit or return an error, callers decide what to do next.
	Error(format string, args ...any)

	// Critical writes data the user must review before taking an irreversible
	// action: the transaction they are about to sign or the proof of one they
	// just broadcast.
	//
	// The terminal implementation renders it as bold text so it stands out
	// from plain Info output.
	Critical(format string, args ...any)

	// Section writes a visual separator centred around a title.
	// Example: "===== Confirm stake before signing ====="
	Section(title string)

	// KeyValue renders an aligned 2-column block, label on the left and
	// value on the right, with all values left-aligned to the same column.
	// Use for compact metadata like Name/Image/Staked or gas details.
	KeyValue(rows [][2]string)

	// Table renders a full bordered table with a header row followed by data
	// rows. Use when there are 3+ columns or the data is inherently tabular
	// (e.g. the token cards of a wallet).
	Table(headers []string, rows [][]string)

	// TableWithGroups renders a bordered table where each group of rows is
	// visually separated from the next by a horizontal divider line. Use when
	// rows belong to distinct logical groups (e.g. owned vs staked tokens).
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner starts an animated spinner with the given message and returns a
	// stop function. Call the stop function (or defer it) to clear the spinner
	// once the work is done:
	//
	//   stop := u.Spinner("Resolving metadata...")
	//   defer stop()
	//
	// In RecordingUI and non-terminal contexts the stop function is a no-op.
	Spinner(msg string) func()

	// Interpret writes what was understood from the user's input, indented
	// and prefixed with "→".
	// Example: "  → 2 tokens: 12, 40"
	Interpret(value string)

	// --- Input ---

	// Confirm asks a yes/no question and returns the boolean answer.
	// It prints the prompt text followed by [Y/n] or [y/N], then a "> " cursor.
	Confirm(prompt string, defaultYes bool) bool

	// Password prints prompt and reads a line without echoing it when
	// stdin is a terminal.
	Password(prompt string) string

	// --- Nesting ---

	// Indent returns a child UI with indent level increased by one,
	// sharing the same underlying writer and reader as the parent.
	Indent() UI

	// Writer returns an io.Writer that prepends the current indentation
	// to every line. Use this when calling functions that take io.Writer
	// directly (e.g. json.NewEncoder for --json output).
	Writer() io.Writer
}
