// Command quick-hotfix packages the build outputs of a set of changed files
// into one zip archive that can be dropped onto a deployed application.
//
// Usage:
//
//	quick-hotfix bundle -o fix.zip -changes - < <(git diff --name-status HEAD)
//	quick-hotfix inspect fix.zip
//	quick-hotfix verify fix.zip
//	quick-hotfix diff old.zip new.zip
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"quick-hotfix/internal/cli"
	_ "quick-hotfix/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches args to a registered command and maps its error to an exit
// code: 0 on success, 2 for usage errors, 1 otherwise.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		args = []string{"help"}
	}
	cmd, ok := cli.GetCommand(args[0])
	if !ok {
		fmt.Fprintf(stderr, "ERROR: unknown command %q (try \"quick-hotfix help\")\n", args[0])
		return 2
	}
	err := cmd.Run(&cli.Context{
		Ctx:    ctx,
		Args:   args[1:],
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		fmt.Fprintf(stderr, "usage: quick-hotfix %s\n", cmd.Usage())
		return 2
	default:
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
}
