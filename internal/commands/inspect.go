package commands

import (
	"flag"
	"fmt"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/cli"
	"quick-hotfix/internal/validate"
)

// InspectCommand lists the entries of a hotfix archive with their hashes.
type InspectCommand struct{}

func (c *InspectCommand) Name() string        { return "inspect" }
func (c *InspectCommand) Aliases() []string   { return []string{"ls"} }
func (c *InspectCommand) Usage() string       { return "inspect <archive.zip>" }
func (c *InspectCommand) Description() string { return "List the entries of a hotfix archive" }

func (c *InspectCommand) Run(ctx *cli.Context) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	if err := fs.Parse(ctx.Args); err != nil {
		return cli.Usagef("%v", err)
	}
	if fs.NArg() != 1 {
		return cli.Usagef("expected one archive, got %d arguments", fs.NArg())
	}
	path := fs.Arg(0)

	entries, err := bundle.ReadListing(path)
	if err != nil {
		return err
	}
	m, err := bundle.ReadManifest(bundle.ManifestPath(path))
	if err != nil {
		return err
	}
	if m != nil {
		if err := validate.Manifest(*m); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stdout, "bundle %s created %s\n", m.BundleID, m.Created)
		fmt.Fprintf(ctx.Stdout, "root   %s\n", m.Root)
		if m.Build != "" {
			fmt.Fprintf(ctx.Stdout, "build  %s %s %s\n", m.Build, m.Module, m.JDK)
		}
		if m.Message != "" {
			fmt.Fprintf(ctx.Stdout, "message %s\n", m.Message)
		}
	}
	fmt.Fprint(ctx.Stdout, bundle.FormatListing(entries))
	fmt.Fprintf(ctx.Stdout, "%d entries\n", len(entries))
	return nil
}

func init() {
	cli.RegisterCommand(&InspectCommand{})
}
