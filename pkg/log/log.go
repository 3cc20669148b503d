// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// 🎨 Display configuration
const (
	keyIndent = 4 // spaces to indent key entries
)

// 🎯 KeyOperation is one announced key
type KeyOperation struct {
	From   string // Source key
	To     string // Target key, empty when skipped
	DryRun bool   // Announced but not performed
}

// 🎯 Logger prints user facing lines and mirrors each into zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex

	quiet   bool
	verbose bool
}

// Option configures a Logger
type Option func(*Logger)

// WithQuiet suppresses rename announcements
func WithQuiet(quiet bool) Option {
	return func(l *Logger) {
		l.quiet = quiet
	}
}

// WithVerbose enables skip notices and key diffs
func WithVerbose(verbose bool) Option {
	return func(l *Logger) {
		l.verbose = verbose
	}
}

// 🏭 New creates a new logger writing to console
func New(console io.Writer, zlog zerolog.Logger, opts ...Option) *Logger {
	l := &Logger{
		zlog:    zlog,
		console: console,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard is a logger that prints nothing
func Discard() *Logger {
	return New(io.Discard, zerolog.Nop(), WithQuiet(true))
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a discarding logger
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return Discard()
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// Verbose reports whether verbose output is on
func (l *Logger) Verbose() bool {
	return l.verbose
}

// 📝 formatRename formats a rename line for display
func (l *Logger) formatRename(op KeyOperation) string {
	prefix := color.New(color.FgGreen).Sprint("→")
	if op.DryRun {
		prefix = color.New(color.FgYellow).Sprint("~")
	}
	return fmt.Sprintf("%s%s Renaming %s to %s",
		strings.Repeat(" ", keyIndent),
		prefix,
		op.From,
		color.New(color.Bold).Sprint(op.To))
}

// 📝 KeyDiff renders the change from one key to another, inserted runs in
// green and deleted runs in red
func KeyDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(color.New(color.FgGreen).Sprintf("[+%s]", d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(color.New(color.FgRed).Sprintf("[-%s]", d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// 📝 Rename announces a rename. Quiet suppresses it, verbose adds a key diff.
func (l *Logger) Rename(ctx context.Context, op KeyOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Debug().
		Str("from", op.From).
		Str("to", op.To).
		Bool("dry_run", op.DryRun).
		Msg("renaming")

	if l.quiet {
		return
	}

	fmt.Fprintln(l.console, l.formatRename(op))
	if l.verbose {
		fmt.Fprintf(l.console, "%s%s\n", strings.Repeat(" ", keyIndent+2), KeyDiff(op.From, op.To))
	}
}

// 📝 Skip notes an unchanged key, printed only in verbose mode
func (l *Logger) Skip(ctx context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Debug().Str("key", key).Msg("skipping unchanged key")

	if !l.verbose {
		return
	}
	fmt.Fprintf(l.console, "%s%s Skipping %s since key did not change\n",
		strings.Repeat(" ", keyIndent),
		color.HiBlackString("-"),
		key)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Debug().Msg(msg)
	if l.quiet {
		return
	}
	name := color.New(color.Bold, color.FgCyan).Sprint("s3rename")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Debug().Msg(msg)
	if l.quiet {
		return
	}
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message, printed only in verbose mode
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog.Debug().Msg(msg)
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
}

// 📝 Print writes a preformatted block, such as a table, unless quiet
func (l *Logger) Print(block string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quiet {
		return
	}
	fmt.Fprint(l.console, block)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
