package commands

import (
	"flag"
	"fmt"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/cli"
	"quick-hotfix/internal/diff"
)

// DiffCommand compares the listings of two hotfix archives.
type DiffCommand struct{}

func (c *DiffCommand) Name() string        { return "diff" }
func (c *DiffCommand) Aliases() []string   { return nil }
func (c *DiffCommand) Usage() string       { return "diff [-context N] <old.zip> <new.zip>" }
func (c *DiffCommand) Description() string { return "Show a unified diff of two archive listings" }

func (c *DiffCommand) Run(ctx *cli.Context) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	contextLines := fs.Int("context", 3, "context lines per hunk")
	maxBytes := fs.Int("max-bytes", 0, "skip the diff when both listings exceed this many bytes (0 = no limit)")
	if err := fs.Parse(ctx.Args); err != nil {
		return cli.Usagef("%v", err)
	}
	if fs.NArg() != 2 {
		return cli.Usagef("expected two archives, got %d arguments", fs.NArg())
	}
	oldPath, newPath := fs.Arg(0), fs.Arg(1)

	oldEntries, err := bundle.ReadListing(oldPath)
	if err != nil {
		return err
	}
	newEntries, err := bundle.ReadListing(newPath)
	if err != nil {
		return err
	}
	body, _, err := diff.Unified(oldPath, newPath,
		[]byte(bundle.FormatListing(oldEntries)),
		[]byte(bundle.FormatListing(newEntries)),
		diff.Options{MaxBytes: *maxBytes, Context: *contextLines})
	if err != nil {
		return err
	}
	if body == "" {
		fmt.Fprintln(ctx.Stdout, "archives have identical contents")
		return nil
	}
	fmt.Fprint(ctx.Stdout, body)
	return nil
}

func init() {
	cli.RegisterCommand(&DiffCommand{})
}
