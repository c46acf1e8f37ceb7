// Package userlog renders operator-facing console output for the bootstrap
// run: step headers, per-file operation lines, and remediation blocks an
// operator can copy verbatim. Everything is mirrored into zerolog.
package userlog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // base width for file paths
	statusWidth = 12 // width for status text
)

// 🎯 FileOperation represents a per-file outcome for logging.
type FileOperation struct {
	Path         string // file path
	Kind         string // payload kind or file class
	Status       string // outcome text
	IsNew        bool   // file was created
	IsModified   bool   // file was rewritten in place
	IsSkipped    bool   // file was skipped
	Replacements int    // substitutions applied
}

// 🪜 StepOperation represents one pipeline step for logging.
type StepOperation struct {
	Name     string
	Critical bool
}

// 🎯 Logger handles structured logging with console output.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	step    *StepOperation
}

// 🏭 New creates a new logger.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values.
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a no-op console logger.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Disabled)
	}
	return logger
}

// 🎯 NewContext adds the logger to context.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 StartStep prints a step header and remembers the current step.
func (l *Logger) StartStep(op StepOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.step = &op
	fmt.Fprintf(l.console, "\n%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name))

	l.zlog.Info().Str("step", op.Name).Bool("critical", op.Critical).Msg("starting step")
}

// 📝 EndStep closes the current step with an outcome line.
func (l *Logger) EndStep(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.step == nil {
		return
	}
	name := l.step.Name
	l.step = nil

	if err == nil {
		fmt.Fprintf(l.console, "  %s %s\n", color.New(color.FgGreen).Sprint("✓"), name)
		l.zlog.Info().Str("step", name).Msg("step complete")
		return
	}
	fmt.Fprintf(l.console, "  %s %s: %v\n", color.New(color.FgRed).Sprint("✗"), name, err)
	l.zlog.Error().Str("step", name).Err(err).Msg("step failed")
}

// 📝 LogFileOperation logs a per-file outcome line.
func (l *Logger) LogFileOperation(op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	fmt.Fprintf(l.console, "%s%s %s %s\n",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	l.zlog.Info().
		Str("file", op.Path).
		Str("kind", op.Kind).
		Str("status", op.Status).
		Bool("is_new", op.IsNew).
		Bool("is_modified", op.IsModified).
		Bool("is_skipped", op.IsSkipped).
		Int("replacements", op.Replacements).
		Msg("file operation")
}

// 📝 Remediation prints a copy-paste remediation block for a fatal failure.
func (l *Logger) Remediation(block string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pterm.Warning.WithWriter(l.console).Println("manual steps required:")
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		fmt.Fprintf(l.console, "    %s\n", color.New(color.FgWhite).Sprint(line))
	}
	l.zlog.Error().Str("remediation", block).Msg("manual remediation required")
}

// 📝 Header logs a run header.
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	title := color.New(color.Bold, color.FgCyan).Sprint("syncsetup")
	fmt.Fprintf(l.console, "\n%s %s\n", title, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message.
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message.
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message.
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message.
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
