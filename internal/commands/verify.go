package commands

import (
	"errors"
	"flag"
	"fmt"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/cli"
	"quick-hotfix/internal/validate"
)

// ErrVerifyFailed is returned when at least one entry no longer matches.
var ErrVerifyFailed = errors.New("verification failed")

// VerifyCommand checks an archive against its manifest and the workspace.
type VerifyCommand struct{}

func (c *VerifyCommand) Name() string      { return "verify" }
func (c *VerifyCommand) Aliases() []string { return nil }
func (c *VerifyCommand) Usage() string     { return "verify <archive.zip>" }
func (c *VerifyCommand) Description() string {
	return "Check an archive against its manifest and the current source files"
}

func (c *VerifyCommand) Run(ctx *cli.Context) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	if err := fs.Parse(ctx.Args); err != nil {
		return cli.Usagef("%v", err)
	}
	if fs.NArg() != 1 {
		return cli.Usagef("expected one archive, got %d arguments", fs.NArg())
	}
	path := fs.Arg(0)

	m, err := bundle.ReadManifest(bundle.ManifestPath(path))
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%s has no manifest (%s); rebuild it with -manifest", path, bundle.ManifestPath(path))
	}
	if err := validate.Manifest(*m); err != nil {
		return err
	}
	mismatches, err := bundle.Verify(ctx.Ctx, path, *m)
	if err != nil {
		return err
	}
	for _, mm := range mismatches {
		fmt.Fprintf(ctx.Stdout, "%s: %s (%s)\n", mm.Name, mm.Reason, mm.Source)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %d of %d entries", ErrVerifyFailed, len(mismatches), len(m.Entries))
	}
	fmt.Fprintf(ctx.Stdout, "ok: %d entries match\n", len(m.Entries))
	return nil
}

func init() {
	cli.RegisterCommand(&VerifyCommand{})
}
