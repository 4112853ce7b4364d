// Package cli holds the command interface and registry shared by the
// quick-hotfix subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrUsage marks errors caused by bad arguments; the CLI exits with status 2.
var ErrUsage = errors.New("usage error")

// Usagef builds an ErrUsage error with a message.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Command represents a cli command
type Command interface {
	Name() string
	Usage() string
	Description() string
	Run(ctx *Context) error
	Aliases() []string
}

// Context carries the arguments and streams of one invocation.
type Context struct {
	Ctx    context.Context
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}
