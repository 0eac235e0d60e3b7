/*
Copyright © 2026 The rws-manager Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package logger writes prefixed, leveled diagnostics for the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

	levelStyles = map[Level]lipgloss.Style{
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// Logger writes one line per message, prefixed with a tag and the level.
// It is safe for concurrent use.
type Logger struct {
	mu      *sync.Mutex
	out     io.Writer
	tag     string
	verbose bool
	styled  bool
}

// New creates a Logger writing to out. Debug messages are only written when
// verbose is set. Styling is enabled when out is a terminal.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		mu:      &sync.Mutex{},
		out:     out,
		tag:     "RWS Manager",
		verbose: verbose,
		styled:  IsTerminal(out),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithTag returns a Logger sharing the output and its lock with a different
// tag, for example one per build type.
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{mu: l.mu, out: l.out, tag: tag, verbose: l.verbose, styled: l.styled}
}

// SetStyled forces styling on or off.
func (l *Logger) SetStyled(styled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.styled = styled
}

// Styled reports whether output is styled.
func (l *Logger) Styled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.styled
}

// Verbose reports whether debug messages are written.
func (l *Logger) Verbose() bool { return l.verbose }

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	tag := "[" + l.tag + "]"
	lvl := level.String()
	if l.styled {
		tag = tagStyle.Render(tag)
		lvl = levelStyles[level].Render(lvl)
	}
	fmt.Fprintf(l.out, "%s %s %s\n", tag, lvl, msg)
}
