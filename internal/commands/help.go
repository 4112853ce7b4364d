// Package commands implements the quick-hotfix subcommands. Each command
// registers itself with the cli registry from init.
package commands

import (
	"fmt"

	"quick-hotfix/internal/cli"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"-h", "--help"} }
func (c *HelpCommand) Usage() string       { return "help [command]" }
func (c *HelpCommand) Description() string { return "Show available commands or help for one command" }

func (c *HelpCommand) Run(ctx *cli.Context) error {
	if len(ctx.Args) > 0 {
		cmd, ok := cli.GetCommand(ctx.Args[0])
		if !ok {
			return cli.Usagef("unknown command %q", ctx.Args[0])
		}
		fmt.Fprintf(ctx.Stdout, "Usage: quick-hotfix %s\n\n%s\n", cmd.Usage(), cmd.Description())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(ctx.Stdout, "Aliases: %v\n", aliases)
		}
		return nil
	}

	fmt.Fprintln(ctx.Stdout, "Usage: quick-hotfix <command> [args...]")
	fmt.Fprintln(ctx.Stdout, "Available commands:")
	for _, cmd := range cli.AllCommands() {
		fmt.Fprintf(ctx.Stdout, "  %-8s %s\n", cmd.Name(), cmd.Description())
	}
	return nil
}

func init() {
	cli.RegisterCommand(&HelpCommand{})
}
